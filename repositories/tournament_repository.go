package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentNameConflict   = errors.New("tournament name conflict")
	ErrTournamentInvalidGame    = errors.New("invalid game reference")
	ErrTournamentInUse          = errors.New("tournament is in use (teams/matches exist)")
	ErrRemoteBracketIDSet       = errors.New("remote bracket id already set")
	ErrTournamentDatesViolation = errors.New("tournament dates violate reg_start < reg_end < start_at")
)

type ListTournamentsFilter struct {
	GameID *int
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateRequiredChannels(ctx context.Context, id int, channels []string) error
	// SetRemoteBracketID persists the provider identifier exactly once;
	// a second call for the same tournament returns ErrRemoteBracketIDSet.
	SetRemoteBracketID(ctx context.Context, id int, remoteID, remoteURL string) error
	UpdateLogo(ctx context.Context, id int, logoRef, logoKey *string) error
	UpdateRulesFileRef(ctx context.Context, id int, rulesFileRef *string) error
	ListRegistrationClosed(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error)
	MarkRegEndReminded(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, game_id, name, description, format, max_teams, status,
	reg_start, reg_end, start_at, edit_deadline, required_channels,
	rules_file_ref, logo_ref, logo_key, remote_bracket_id, remote_url, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.GameID, &t.Name, &t.Description, &t.Format, &t.MaxTeams, &t.Status,
		&t.RegStart, &t.RegEnd, &t.StartAt, &t.EditDeadline, pq.Array(&t.RequiredChannels),
		&t.RulesFileRef, &t.LogoRef, &t.LogoKey, &t.RemoteBracketID, &t.RemoteURL, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			game_id, name, description, format, max_teams, status,
			reg_start, reg_end, start_at, edit_deadline, required_channels
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.GameID, t.Name, t.Description, t.Format, t.MaxTeams, t.Status,
		t.RegStart, t.RegEnd, t.StartAt, t.EditDeadline, pq.Array(t.RequiredChannels),
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	if err := scanTournament(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.GameID != nil {
		query += fmt.Sprintf(" AND game_id = $%d", argID)
		args = append(args, *filter.GameID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_at DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	// remote_bracket_id, logo and rules refs are updated only by their
	// dedicated methods.
	query := `
		UPDATE tournaments SET
			game_id = $1,
			name = $2,
			description = $3,
			format = $4,
			max_teams = $5,
			status = $6,
			reg_start = $7,
			reg_end = $8,
			start_at = $9,
			edit_deadline = $10,
			required_channels = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		t.GameID, t.Name, t.Description, t.Format, t.MaxTeams, t.Status,
		t.RegStart, t.RegEnd, t.StartAt, t.EditDeadline, pq.Array(t.RequiredChannels),
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// UpdateRequiredChannels replaces the full ordered list in one write.
func (r *postgresTournamentRepository) UpdateRequiredChannels(ctx context.Context, id int, channels []string) error {
	if channels == nil {
		channels = []string{}
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET required_channels = $1 WHERE id = $2`,
		pq.Array(channels), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update required channels: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetRemoteBracketID(ctx context.Context, id int, remoteID, remoteURL string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tournaments
		SET remote_bracket_id = $1, remote_url = $2
		WHERE id = $3 AND remote_bracket_id IS NULL`,
		remoteID, remoteURL, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set remote bracket id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing tournament from an already-set id.
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing.RemoteBracketID != nil {
			return ErrRemoteBracketIDSet
		}
		return ErrTournamentNotFound
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateLogo(ctx context.Context, id int, logoRef, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET logo_ref = $1, logo_key = $2 WHERE id = $3`,
		logoRef, logoKey, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateRulesFileRef(ctx context.Context, id int, rulesFileRef *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET rules_file_ref = $1 WHERE id = $2`,
		rulesFileRef, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament rules ref: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListRegistrationClosed returns tournaments still in registration whose
// window has elapsed and for which admins have not been reminded yet.
// Starting the bracket remains a manual admin action.
func (r *postgresTournamentRepository) ListRegistrationClosed(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND reg_end <= $2 AND NOT reg_end_reminded`

	rows, err := r.db.QueryContext(ctx, query, models.StatusRegistration, currentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed-registration tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan closed-registration tournament: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) MarkRegEndReminded(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET reg_end_reminded = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentNameConflict
		case "23503":
			if pqErr.Constraint == "tournaments_game_id_fkey" {
				return ErrTournamentInvalidGame
			}
			return ErrTournamentInUse
		case "23514":
			if pqErr.Constraint == "tournaments_dates_check" {
				return ErrTournamentDatesViolation
			}
		}
	}
	return err
}
