package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerNicknameConflict = errors.New("nickname already taken in this tournament")
	ErrPlayerInGameIDConflict = errors.New("in-game id already taken in this tournament")
	ErrPlayerInvalidTeam      = errors.New("invalid team reference")
)

type PlayerRepository interface {
	Create(ctx context.Context, tournamentID int, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Player, error)
	Delete(ctx context.Context, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

// Create inserts a roster entry. The denormalized tournament_id column backs
// the per-tournament uniqueness of nickname and in_game_id.
func (r *postgresPlayerRepository) Create(ctx context.Context, tournamentID int, player *models.Player) error {
	query := `
		INSERT INTO players (team_id, tournament_id, nickname, in_game_id, is_substitute, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		player.TeamID, tournamentID, player.Nickname, player.InGameID,
		player.IsSubstitute, player.Position,
	).Scan(&player.ID)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, team_id, nickname, in_game_id, is_substitute, position
		FROM players WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Nickname, &p.InGameID, &p.IsSubstitute, &p.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT id, team_id, nickname, in_game_id, is_substitute, position
		FROM players WHERE team_id = $1
		ORDER BY is_substitute ASC, position ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Nickname, &p.InGameID, &p.IsSubstitute, &p.Position); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "players_tournament_nickname_key":
				return ErrPlayerNicknameConflict
			case "players_tournament_ingameid_key":
				return ErrPlayerInGameIDConflict
			}
		case "23503":
			return ErrPlayerInvalidTeam
		}
	}
	return err
}
