// Package provider is a stateless wire adapter to the external bracket
// service. It normalizes the provider's wire formats; callers never see
// transport-shaped errors or raw payload variations.
package provider

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable           = errors.New("bracket provider unavailable")
	ErrNotFound              = errors.New("remote tournament not found")
	ErrDuplicateParticipant  = errors.New("participant already added")
	ErrNotEnoughParticipants = errors.New("not enough participants to start")
	ErrAlreadyStarted        = errors.New("remote tournament already started")
	ErrInvalidTransition     = errors.New("remote match does not accept this score update")
)

// RejectedError carries the provider's refusal reason for create calls.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("bracket provider rejected request: %s", e.Reason)
}

// TournamentType is the provider-side format name derived from the local
// tournament format.
type TournamentType string

const (
	TypeSingleElimination TournamentType = "single elimination"
	TypeDoubleElimination TournamentType = "double elimination"
	TypeRoundRobin        TournamentType = "round robin"
	TypeSwiss             TournamentType = "swiss"
)

type RemoteTournament struct {
	ID      string
	Name    string
	URL     string
	State   string
	Started bool
}

type RemoteParticipant struct {
	ID   int64
	Name string
}

// RemoteMatch is the normalized match descriptor. Round keeps the provider's
// signed convention: negative rounds are the loser bracket. Participant ids
// may arrive inline (Player1ID/Player2ID) or only inside the
// points-by-participant side list; both are exposed so the synchronizer can
// try each.
type RemoteMatch struct {
	ID        string
	Round     int
	PlayOrder int
	State     string
	Player1ID *int64
	Player2ID *int64

	PointsByParticipant []ParticipantPoints
}

type ParticipantPoints struct {
	ParticipantID int64
	Points        int
}

// SlotParticipants resolves the two participant ids, falling back to the
// points side list when inline ids are absent.
func (m *RemoteMatch) SlotParticipants() (p1, p2 *int64) {
	p1, p2 = m.Player1ID, m.Player2ID
	if p1 != nil || p2 != nil {
		return p1, p2
	}
	if len(m.PointsByParticipant) > 0 {
		id := m.PointsByParticipant[0].ParticipantID
		p1 = &id
	}
	if len(m.PointsByParticipant) > 1 {
		id := m.PointsByParticipant[1].ParticipantID
		p2 = &id
	}
	return p1, p2
}

// Client is safe for concurrent use; one instance per process.
type Client interface {
	CreateTournament(ctx context.Context, name string, typ TournamentType, description string) (*RemoteTournament, error)
	AddParticipant(ctx context.Context, remoteID, participantName string) (*RemoteParticipant, error)
	StartTournament(ctx context.Context, remoteID string) error
	GetTournament(ctx context.Context, remoteID string) (*RemoteTournament, error)
	GetParticipants(ctx context.Context, remoteID string) ([]RemoteParticipant, error)
	GetMatches(ctx context.Context, remoteID string) ([]RemoteMatch, error)
	// UpdateMatchScore submits scoresCSV in the provider's exact format:
	// two integers separated by a single ASCII hyphen, e.g. "3-1".
	UpdateMatchScore(ctx context.Context, remoteID, remoteMatchID string, winnerParticipantID int64, scoresCSV string, loserParticipantID *int64) error
}

// FormatScoresCSV renders the bit-exact scores_csv field.
func FormatScoresCSV(s1, s2 int) string {
	return fmt.Sprintf("%d-%d", s1, s2)
}
