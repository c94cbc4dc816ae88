package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusInProgress   TournamentStatus = "in_progress"
	StatusPaused       TournamentStatus = "paused"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "cancelled"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elim"
	FormatDoubleElimination TournamentFormat = "double_elim"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
	FormatGroupsPlayoffs    TournamentFormat = "groups_playoffs"
)

// Tournament представляет турнир. All timestamps are UTC and must satisfy
// RegStart < RegEnd < StartAt.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	GameID       int              `json:"game_id" db:"game_id"`
	Name         string           `json:"name" db:"name"`
	Description  *string          `json:"description,omitempty" db:"description"`
	Format       TournamentFormat `json:"format" db:"format"`
	MaxTeams     int              `json:"max_teams" db:"max_teams"`
	Status       TournamentStatus `json:"status" db:"status"`
	RegStart     time.Time        `json:"reg_start" db:"reg_start"`
	RegEnd       time.Time        `json:"reg_end" db:"reg_end"`
	StartAt      time.Time        `json:"start_at" db:"start_at"`
	EditDeadline time.Time        `json:"edit_deadline" db:"edit_deadline"`

	// RequiredChannels is ordered for presentation; membership is the
	// semantic content.
	RequiredChannels []string `json:"required_channels" db:"required_channels"`

	RulesFileRef *string `json:"rules_file_ref,omitempty" db:"rules_file_ref"`
	LogoRef      *string `json:"logo_ref,omitempty" db:"logo_ref"`
	LogoKey      *string `json:"-" db:"logo_key"`
	LogoURL      *string `json:"logo_url,omitempty" db:"-"`

	// RemoteBracketID is set once by the bracket coordinator and is
	// immutable afterwards.
	RemoteBracketID *string `json:"remote_bracket_id,omitempty" db:"remote_bracket_id"`
	RemoteURL       *string `json:"remote_url,omitempty" db:"remote_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Game  *Game  `json:"game,omitempty" db:"-"`
	Teams []Team `json:"teams,omitempty" db:"-"`
}

// RegistrationOpen reports whether a captain may attempt registration at t.
func (t *Tournament) RegistrationOpen(now time.Time) bool {
	return t.Status == StatusRegistration && !now.Before(t.RegStart) && !now.After(t.RegEnd)
}
