package bot

import (
	"sync"
	"time"
)

// SessionState names one step of a multi-message dialog.
type SessionState string

const (
	StateIdle           SessionState = ""
	StateAwaitTeamName  SessionState = "await_team_name"
	StateAwaitT1Score   SessionState = "await_t1_score"
	StateAwaitT2Score   SessionState = "await_t2_score"
	StateConfirmResult  SessionState = "confirm_result"
	StateAwaitBroadcast SessionState = "await_broadcast"
)

// Session carries the dialog state between messages of one user in one chat.
type Session struct {
	State        SessionState
	TournamentID int
	MatchID      int
	Team1Score   int
	Team2Score   int
	UpdatedAt    time.Time
}

type sessionKey struct {
	chatID int64
	userID int64
}

// SessionStore keeps dialog state keyed by (chat, user).
type SessionStore interface {
	Get(chatID, userID int64) (Session, bool)
	Put(chatID, userID int64, s Session)
	Delete(chatID, userID int64)
}

// sessionTTL bounds how long an abandoned dialog survives.
const sessionTTL = 30 * time.Minute

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]Session
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[sessionKey]Session)}
}

func (m *memorySessionStore) Get(chatID, userID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{chatID, userID}]
	if !ok {
		return Session{}, false
	}
	if time.Since(s.UpdatedAt) > sessionTTL {
		delete(m.sessions, sessionKey{chatID, userID})
		return Session{}, false
	}
	return s, true
}

func (m *memorySessionStore) Put(chatID, userID int64, s Session) {
	s.UpdatedAt = time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey{chatID, userID}] = s
}

func (m *memorySessionStore) Delete(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{chatID, userID})
}
