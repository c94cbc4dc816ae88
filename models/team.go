package models

import "time"

type TeamStatus string

const (
	TeamStatusPending  TeamStatus = "pending"
	TeamStatusApproved TeamStatus = "approved"
	TeamStatusRejected TeamStatus = "rejected"
	TeamStatusBlocked  TeamStatus = "blocked"
)

type BlockScope string

const (
	BlockScopeTournament BlockScope = "tournament"
	BlockScopeGlobal     BlockScope = "global"
)

// Team belongs to exactly one tournament; its name is unique within that
// tournament and doubles as the join key with the bracket provider.
type Team struct {
	ID              int        `json:"id" db:"id"`
	TournamentID    int        `json:"tournament_id" db:"tournament_id"`
	Name            string     `json:"name" db:"name"`
	CaptainUserID   int        `json:"captain_user_id" db:"captain_user_id"`
	Status          TeamStatus `json:"status" db:"status"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`

	BlockReason *string     `json:"block_reason,omitempty" db:"block_reason"`
	BlockScope  *BlockScope `json:"block_scope,omitempty" db:"block_scope"`
	BlockedBy   *int        `json:"blocked_by,omitempty" db:"blocked_by"`
	BlockedAt   *time.Time  `json:"blocked_at,omitempty" db:"blocked_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Captain *User    `json:"captain,omitempty" db:"-"`
	Players []Player `json:"players,omitempty" db:"-"`
}
