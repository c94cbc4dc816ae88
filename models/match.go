package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "cancelled"
)

type BracketType string

const (
	BracketWinner BracketType = "winner"
	BracketLoser  BracketType = "loser"
)

// GrandFinalRound is the provider's sentinel round number for the
// double-elimination grand final.
const GrandFinalRound = 999

// Match mirrors one node of the provider's match graph. RoundNumber holds the
// absolute round; the provider's negative-round convention for the loser
// bracket is normalized into BracketType by the synchronizer.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Team1ID      *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	Team1Score   *int        `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int        `json:"team2_score,omitempty" db:"team2_score"`
	Status       MatchStatus `json:"status" db:"status"`
	BracketType  BracketType `json:"bracket_type" db:"bracket_type"`

	// RemoteMatchID, once set, is the stable external key used by the
	// synchronizer to locate this row on subsequent runs.
	RemoteMatchID *string    `json:"remote_match_id,omitempty" db:"remote_match_id"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	Team1 *Team `json:"team1,omitempty" db:"-"`
	Team2 *Team `json:"team2,omitempty" db:"-"`
}

// Ready reports whether both slots are filled and the match can be played.
func (m *Match) Ready() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}
