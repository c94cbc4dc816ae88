package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInvalidTeam = errors.New("match team conflict or invalid")
	ErrMatchTiedScore   = errors.New("tied scores are not allowed")
)

// MatchUpsert is one normalized remote match row, ready for the idempotent
// upsert keyed by (tournament_id, remote_match_id).
type MatchUpsert struct {
	RemoteMatchID string
	RoundNumber   int
	MatchNumber   int
	BracketType   models.BracketType
	Team1ID       *int
	Team2ID       *int
}

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error)
	// SyncFromRemote upserts the given rows. Existing rows keep their local
	// winner and scores; provider team slots overwrite local ones only when
	// non-null. Returns the post-upsert state of every touched row.
	SyncFromRemote(ctx context.Context, tournamentID int, upserts []MatchUpsert) ([]*models.Match, error)
	// UpdateScore sets both scores, the winner and status=completed in one
	// write. Tied scores are rejected.
	UpdateScore(ctx context.Context, id int, team1Score, team2Score, winnerID int) (*models.Match, error)
	Cancel(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, round_number, match_number, team1_id, team2_id,
	winner_id, team1_score, team2_score, status, bracket_type,
	remote_match_id, scheduled_at, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.RoundNumber, &m.MatchNumber, &m.Team1ID, &m.Team2ID,
		&m.WinnerID, &m.Team1Score, &m.Team2Score, &m.Status, &m.BracketType,
		&m.RemoteMatchID, &m.ScheduledAt, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY bracket_type DESC, round_number ASC, match_number ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) SyncFromRemote(ctx context.Context, tournamentID int, upserts []MatchUpsert) ([]*models.Match, error) {
	// The upsert is commutative under the remote_match_id key, so no
	// transaction spans the loop; concurrent sync runs converge.
	query := `
		INSERT INTO matches (
			tournament_id, round_number, match_number, bracket_type,
			team1_id, team2_id, status, remote_match_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tournament_id, remote_match_id) DO UPDATE SET
			round_number = EXCLUDED.round_number,
			match_number = EXCLUDED.match_number,
			bracket_type = EXCLUDED.bracket_type,
			team1_id = COALESCE(EXCLUDED.team1_id, matches.team1_id),
			team2_id = COALESCE(EXCLUDED.team2_id, matches.team2_id)
		RETURNING` + matchColumns

	synced := make([]*models.Match, 0, len(upserts))
	for _, u := range upserts {
		var m models.Match
		err := scanMatch(r.db.QueryRowContext(ctx, query,
			tournamentID, u.RoundNumber, u.MatchNumber, u.BracketType,
			u.Team1ID, u.Team2ID, models.MatchStatusPending, u.RemoteMatchID,
		), &m)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert remote match %s: %w", u.RemoteMatchID, r.handleMatchError(err))
		}
		synced = append(synced, &m)
	}
	return synced, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id int, team1Score, team2Score, winnerID int) (*models.Match, error) {
	if team1Score == team2Score {
		return nil, ErrMatchTiedScore
	}

	query := `
		UPDATE matches
		SET team1_score = $1, team2_score = $2, winner_id = $3, status = $4
		WHERE id = $5
		RETURNING` + matchColumns

	m := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query,
		team1Score, team2Score, winnerID, models.MatchStatusCompleted, id,
	), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, r.handleMatchError(err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Cancel(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`,
		models.MatchStatusCanceled, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrMatchInvalidTeam
	}
	return err
}
