package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// MigrationFunc applies or reverts one schema change inside the given
// transaction.
type MigrationFunc func(ctx context.Context, tx *sql.Tx) error

type Migration struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

func execAll(stmts ...string) MigrationFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 48)], err)
			}
		}
		return nil
	}
}

// Migrations is the ordered schema history. Names are recorded in the
// schema_migrations journal; the runner skips anything already present.
var Migrations = []Migration{
	{
		Name: "001_users",
		Up: execAll(`
			CREATE TABLE users (
				id            SERIAL PRIMARY KEY,
				external_id   BIGINT NOT NULL UNIQUE,
				display_name  TEXT NOT NULL DEFAULT '',
				role          TEXT NOT NULL DEFAULT 'user',
				blocked       BOOLEAN NOT NULL DEFAULT FALSE,
				timezone      TEXT NOT NULL DEFAULT 'UTC',
				locale        TEXT NOT NULL DEFAULT 'ru',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`),
		Down: execAll(`DROP TABLE users`),
	},
	{
		Name: "002_games",
		Up: execAll(`
			CREATE TABLE games (
				id                     SERIAL PRIMARY KEY,
				name                   TEXT NOT NULL UNIQUE,
				short_name             TEXT NOT NULL UNIQUE,
				roster_main_size       INT NOT NULL,
				roster_substitute_size INT NOT NULL DEFAULT 0
			)`),
		Down: execAll(`DROP TABLE games`),
	},
	{
		Name: "003_tournaments",
		Up: execAll(`
			CREATE TABLE tournaments (
				id                SERIAL PRIMARY KEY,
				game_id           INT NOT NULL REFERENCES games(id),
				name              TEXT NOT NULL,
				description       TEXT,
				format            TEXT NOT NULL,
				max_teams         INT NOT NULL,
				status            TEXT NOT NULL DEFAULT 'registration',
				reg_start         TIMESTAMPTZ NOT NULL,
				reg_end           TIMESTAMPTZ NOT NULL,
				start_at          TIMESTAMPTZ NOT NULL,
				edit_deadline     TIMESTAMPTZ NOT NULL,
				required_channels TEXT[] NOT NULL DEFAULT '{}',
				rules_file_ref    TEXT,
				logo_ref          TEXT,
				logo_key          TEXT,
				remote_bracket_id TEXT,
				remote_url        TEXT,
				reg_end_reminded  BOOLEAN NOT NULL DEFAULT FALSE,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT tournaments_dates_check CHECK (reg_start < reg_end AND reg_end < start_at)
			)`),
		Down: execAll(`DROP TABLE tournaments`),
	},
	{
		Name: "004_teams",
		Up: execAll(`
			CREATE TABLE teams (
				id               SERIAL PRIMARY KEY,
				tournament_id    INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				name             TEXT NOT NULL,
				captain_user_id  INT NOT NULL REFERENCES users(id),
				status           TEXT NOT NULL DEFAULT 'pending',
				rejection_reason TEXT,
				block_reason     TEXT,
				block_scope      TEXT,
				blocked_by       INT REFERENCES users(id),
				blocked_at       TIMESTAMPTZ,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT teams_tournament_name_key UNIQUE (tournament_id, name)
			)`,
			// One live (pending/approved) team per captain per tournament.
			`CREATE UNIQUE INDEX teams_captain_live_idx
				ON teams (tournament_id, captain_user_id)
				WHERE status IN ('pending', 'approved')`),
		Down: execAll(`DROP TABLE teams`),
	},
	{
		Name: "005_players",
		Up: execAll(`
			CREATE TABLE players (
				id            SERIAL PRIMARY KEY,
				team_id       INT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
				tournament_id INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				nickname      TEXT NOT NULL,
				in_game_id    TEXT NOT NULL,
				is_substitute BOOLEAN NOT NULL DEFAULT FALSE,
				position      INT NOT NULL DEFAULT 0,
				CONSTRAINT players_tournament_nickname_key UNIQUE (tournament_id, nickname),
				CONSTRAINT players_tournament_ingameid_key UNIQUE (tournament_id, in_game_id)
			)`),
		Down: execAll(`DROP TABLE players`),
	},
	{
		Name: "006_matches",
		Up: execAll(`
			CREATE TABLE matches (
				id              SERIAL PRIMARY KEY,
				tournament_id   INT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				round_number    INT NOT NULL,
				match_number    INT NOT NULL DEFAULT 0,
				team1_id        INT REFERENCES teams(id),
				team2_id        INT REFERENCES teams(id),
				winner_id       INT REFERENCES teams(id),
				team1_score     INT,
				team2_score     INT,
				status          TEXT NOT NULL DEFAULT 'pending',
				bracket_type    TEXT NOT NULL DEFAULT 'winner',
				remote_match_id TEXT,
				scheduled_at    TIMESTAMPTZ,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT matches_remote_key UNIQUE (tournament_id, remote_match_id)
			)`),
		Down: execAll(`DROP TABLE matches`),
	},
}

// Migrate applies all pending migrations in order, recording each applied name
// in the schema_migrations journal.
func Migrate(ctx context.Context, dbConn *sql.DB, logger *slog.Logger) error {
	_, err := dbConn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := dbConn.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range Migrations {
		if applied[m.Name] {
			continue
		}
		if err := runMigration(ctx, dbConn, m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		logger.Info("migration applied", slog.String("name", m.Name))
	}
	return nil
}

func runMigration(ctx context.Context, dbConn *sql.DB, m Migration) error {
	tx, err := dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := m.Up(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
