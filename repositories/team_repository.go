package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name already taken in this tournament")
	ErrTeamCaptainConflict   = errors.New("captain already has a live team in this tournament")
	ErrTeamInvalidTournament = errors.New("invalid tournament reference")
	ErrTeamInvalidCaptain    = errors.New("invalid captain reference")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByName(ctx context.Context, tournamentID int, name string) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.TeamStatus) ([]*models.Team, error)
	CountByStatus(ctx context.Context, tournamentID int, status models.TeamStatus) (int, error)
	// IsCaptainRegistered reports whether the captain already has a team in
	// pending or approved state for the tournament. Rejected and blocked
	// teams are excluded so the captain may retry.
	IsCaptainRegistered(ctx context.Context, captainUserID, tournamentID int) (bool, error)
	Approve(ctx context.Context, id int) error
	Reject(ctx context.Context, id int, reason string) error
	Block(ctx context.Context, id int, reason string, scope models.BlockScope, actorUserID int) error
	Unblock(ctx context.Context, id int) error
	Rename(ctx context.Context, id int, name string) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `
	id, tournament_id, name, captain_user_id, status, rejection_reason,
	block_reason, block_scope, blocked_by, blocked_at, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }, t *models.Team) error {
	return row.Scan(
		&t.ID, &t.TournamentID, &t.Name, &t.CaptainUserID, &t.Status, &t.RejectionReason,
		&t.BlockReason, &t.BlockScope, &t.BlockedBy, &t.BlockedAt, &t.CreatedAt,
	)
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, name, captain_user_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.TournamentID, team.Name, team.CaptainUserID, team.Status,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE id = $1`

	t := &models.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) GetByName(ctx context.Context, tournamentID int, name string) (*models.Team, error) {
	query := `SELECT` + teamColumns + ` FROM teams WHERE tournament_id = $1 AND name = $2`

	t := &models.Team{}
	if err := scanTeam(r.db.QueryRowContext(ctx, query, tournamentID, name), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.TeamStatus) ([]*models.Team, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + teamColumns + ` FROM teams WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY created_at ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := scanTeam(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) CountByStatus(ctx context.Context, tournamentID int, status models.TeamStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE tournament_id = $1 AND status = $2`,
		tournamentID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) IsCaptainRegistered(ctx context.Context, captainUserID, tournamentID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM teams
			WHERE captain_user_id = $1 AND tournament_id = $2
			AND status IN ($3, $4)
		)`,
		captainUserID, tournamentID, models.TeamStatusPending, models.TeamStatusApproved,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check captain registration: %w", err)
	}
	return exists, nil
}

func (r *postgresTeamRepository) Approve(ctx context.Context, id int) error {
	query := `
		UPDATE teams
		SET status = $1, rejection_reason = NULL,
			block_reason = NULL, block_scope = NULL, blocked_by = NULL, blocked_at = NULL
		WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, models.TeamStatusApproved, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Reject(ctx context.Context, id int, reason string) error {
	query := `UPDATE teams SET status = $1, rejection_reason = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, models.TeamStatusRejected, reason, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Block(ctx context.Context, id int, reason string, scope models.BlockScope, actorUserID int) error {
	query := `
		UPDATE teams
		SET status = $1, block_reason = $2, block_scope = $3, blocked_by = $4, blocked_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query,
		models.TeamStatusBlocked, reason, scope, actorUserID, time.Now().UTC(), id,
	)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Unblock(ctx context.Context, id int) error {
	query := `
		UPDATE teams
		SET status = $1, block_reason = NULL, block_scope = NULL, blocked_by = NULL, blocked_at = NULL
		WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, models.TeamStatusApproved, id, models.TeamStatusBlocked)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Rename(ctx context.Context, id int, name string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			switch pqErr.Constraint {
			case "teams_tournament_name_key":
				return ErrTeamNameConflict
			case "teams_captain_live_idx":
				return ErrTeamCaptainConflict
			}
			return ErrTeamNameConflict
		case "23503":
			switch pqErr.Constraint {
			case "teams_tournament_id_fkey":
				return ErrTeamInvalidTournament
			case "teams_captain_user_id_fkey":
				return ErrTeamInvalidCaptain
			}
		}
	}
	return err
}
