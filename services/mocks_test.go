package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/provider"
	"github.com/cyberarena/tournament-bot/repositories"
)

// In-memory fakes for the repository and collaborator interfaces. They keep
// the semantics the Postgres implementations promise (conflict sentinels,
// write-once remote ids, upsert behavior) so service tests exercise real
// control flow.

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) add(t *models.Tournament) *models.Tournament {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	}
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.add(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateRequiredChannels(ctx context.Context, id int, channels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.RequiredChannels = channels
	return nil
}

func (r *fakeTournamentRepo) SetRemoteBracketID(ctx context.Context, id int, remoteID, remoteURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.RemoteBracketID != nil {
		return repositories.ErrRemoteBracketIDSet
	}
	t.RemoteBracketID = &remoteID
	t.RemoteURL = &remoteURL
	return nil
}

func (r *fakeTournamentRepo) UpdateLogo(ctx context.Context, id int, logoRef, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoRef, t.LogoKey = logoRef, logoKey
	return nil
}

func (r *fakeTournamentRepo) UpdateRulesFileRef(ctx context.Context, id int, rulesFileRef *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.RulesFileRef = rulesFileRef
	return nil
}

func (r *fakeTournamentRepo) ListRegistrationClosed(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.StatusRegistration && !currentTime.Before(t.RegEnd) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) MarkRegEndReminded(ctx context.Context, id int) error {
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tournaments, id)
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (r *fakeTeamRepo) add(t *models.Team) *models.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		t.ID = r.nextID
		r.nextID++
	}
	r.teams[t.ID] = t
	return t
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	for _, existing := range r.teams {
		if existing.TournamentID != team.TournamentID {
			continue
		}
		if existing.Name == team.Name {
			r.mu.Unlock()
			return repositories.ErrTeamNameConflict
		}
		if existing.CaptainUserID == team.CaptainUserID &&
			(existing.Status == models.TeamStatusPending || existing.Status == models.TeamStatusApproved) {
			r.mu.Unlock()
			return repositories.ErrTeamCaptainConflict
		}
	}
	r.mu.Unlock()
	r.add(team)
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) GetByName(ctx context.Context, tournamentID int, name string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.TournamentID == tournamentID && t.Name == name {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.TeamStatus) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Team
	for _, t := range r.teams {
		if t.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && t.Status != *statusFilter {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) CountByStatus(ctx context.Context, tournamentID int, status models.TeamStatus) (int, error) {
	teams, _ := r.ListByTournament(ctx, tournamentID, &status)
	return len(teams), nil
}

func (r *fakeTeamRepo) IsCaptainRegistered(ctx context.Context, captainUserID, tournamentID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.TournamentID == tournamentID && t.CaptainUserID == captainUserID &&
			(t.Status == models.TeamStatusPending || t.Status == models.TeamStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) setStatus(id int, status models.TeamStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTeamRepo) Approve(ctx context.Context, id int) error {
	return r.setStatus(id, models.TeamStatusApproved)
}

func (r *fakeTeamRepo) Reject(ctx context.Context, id int, reason string) error {
	r.mu.Lock()
	if t, ok := r.teams[id]; ok {
		t.RejectionReason = &reason
	}
	r.mu.Unlock()
	return r.setStatus(id, models.TeamStatusRejected)
}

func (r *fakeTeamRepo) Block(ctx context.Context, id int, reason string, scope models.BlockScope, actorUserID int) error {
	r.mu.Lock()
	if t, ok := r.teams[id]; ok {
		now := time.Now()
		t.BlockReason = &reason
		t.BlockScope = &scope
		t.BlockedBy = &actorUserID
		t.BlockedAt = &now
	}
	r.mu.Unlock()
	return r.setStatus(id, models.TeamStatusBlocked)
}

func (r *fakeTeamRepo) Unblock(ctx context.Context, id int) error {
	r.mu.Lock()
	if t, ok := r.teams[id]; ok {
		t.BlockReason = nil
		t.BlockScope = nil
		t.BlockedBy = nil
		t.BlockedAt = nil
	}
	r.mu.Unlock()
	return r.setStatus(id, models.TeamStatusApproved)
}

func (r *fakeTeamRepo) Rename(ctx context.Context, id int, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Name = name
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.teams, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == user.ExternalID {
			return repositories.ErrUserIDConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByExternalID(ctx context.Context, externalID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == externalID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	all, _ := r.List(ctx, 0, 0)
	admins := make([]models.User, 0)
	for _, u := range all {
		if u.Role == models.RoleAdmin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (r *fakeUserRepo) UpdateDisplayName(ctx context.Context, id int, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateBlocked(ctx context.Context, id int, blocked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Blocked = blocked
	return nil
}

func (r *fakeUserRepo) UpdateSettings(ctx context.Context, id int, timezone, locale string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Timezone = timezone
	u.Locale = locale
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int]*models.Player), nextID: 1}
}

func (r *fakePlayerRepo) Create(ctx context.Context, tournamentID int, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Nickname == player.Nickname {
			return repositories.ErrPlayerNicknameConflict
		}
		if p.InGameID == player.InGameID {
			return repositories.ErrPlayerInGameIDConflict
		}
	}
	player.ID = r.nextID
	r.nextID++
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Player
	for _, p := range r.players {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
	return nil
}

type fakeGameRepo struct {
	games map[int]*models.Game
}

func newFakeGameRepo(games ...*models.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[int]*models.Game)}
	for _, g := range games {
		repo.games[g.ID] = g
	}
	return repo
}

func (r *fakeGameRepo) Create(ctx context.Context, game *models.Game) error {
	r.games[game.ID] = game
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return g, nil
}

func (r *fakeGameRepo) List(ctx context.Context) ([]models.Game, error) {
	var out []models.Game
	for _, g := range r.games {
		out = append(out, *g)
	}
	return out, nil
}

func (r *fakeGameRepo) Update(ctx context.Context, game *models.Game) error { return nil }
func (r *fakeGameRepo) Delete(ctx context.Context, id int) error            { return nil }

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) add(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}
	r.matches[m.ID] = m
	return m
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if statusFilter != nil && m.Status != *statusFilter {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BracketType != out[j].BracketType {
			return out[i].BracketType == models.BracketWinner
		}
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out, nil
}

func (r *fakeMatchRepo) SyncFromRemote(ctx context.Context, tournamentID int, upserts []repositories.MatchUpsert) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, up := range upserts {
		var existing *models.Match
		for _, m := range r.matches {
			if m.TournamentID == tournamentID && m.RemoteMatchID != nil && *m.RemoteMatchID == up.RemoteMatchID {
				existing = m
				break
			}
		}
		if existing == nil {
			remoteID := up.RemoteMatchID
			existing = &models.Match{
				ID:            r.nextID,
				TournamentID:  tournamentID,
				RemoteMatchID: &remoteID,
				Status:        models.MatchStatusPending,
			}
			r.nextID++
			r.matches[existing.ID] = existing
		}
		existing.RoundNumber = up.RoundNumber
		existing.MatchNumber = up.MatchNumber
		existing.BracketType = up.BracketType
		if up.Team1ID != nil {
			existing.Team1ID = up.Team1ID
		}
		if up.Team2ID != nil {
			existing.Team2ID = up.Team2ID
		}
		copied := *existing
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, id int, team1Score, team2Score, winnerID int) (*models.Match, error) {
	if team1Score == team2Score {
		return nil, repositories.ErrMatchTiedScore
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	m.Team1Score, m.Team2Score = &team1Score, &team2Score
	m.WinnerID = &winnerID
	m.Status = models.MatchStatusCompleted
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) Cancel(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusCanceled
	return nil
}

// fakeChatClient records outbound traffic and answers membership checks from
// a static table.
type fakeChatClient struct {
	mu          sync.Mutex
	sent        []chat.Message
	memberships map[string]map[int64]chat.MemberStatus
	memberErr   error
}

func newFakeChatClient() *fakeChatClient {
	return &fakeChatClient{memberships: make(map[string]map[int64]chat.MemberStatus)}
}

func (c *fakeChatClient) setMembership(channel string, userID int64, status chat.MemberStatus) {
	if c.memberships[channel] == nil {
		c.memberships[channel] = make(map[int64]chat.MemberStatus)
	}
	c.memberships[channel][userID] = status
}

func (c *fakeChatClient) SendMessage(ctx context.Context, msg chat.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChatClient) GetChatMember(ctx context.Context, channel string, userExternalID int64) (chat.MemberStatus, error) {
	if c.memberErr != nil {
		return "", c.memberErr
	}
	if statuses, ok := c.memberships[channel]; ok {
		if status, ok := statuses[userExternalID]; ok {
			return status, nil
		}
	}
	return chat.MemberLeft, nil
}

func (c *fakeChatClient) DownloadFile(ctx context.Context, fileRef string) ([]byte, error) {
	return []byte("file:" + fileRef), nil
}

func (c *fakeChatClient) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return nil
}

// fakeProviderClient simulates the remote bracket service with in-memory
// state, including duplicate-participant and already-started answers.
type fakeProviderClient struct {
	mu           sync.Mutex
	created      int
	started      map[string]bool
	participants map[string][]provider.RemoteParticipant
	matches      map[string][]provider.RemoteMatch
	nextPartID   int64

	createErr   error
	startErr    error
	matchErr    error
	scoreErr    error
	scorePushes []string
}

func newFakeProviderClient() *fakeProviderClient {
	return &fakeProviderClient{
		started:      make(map[string]bool),
		participants: make(map[string][]provider.RemoteParticipant),
		matches:      make(map[string][]provider.RemoteMatch),
		nextPartID:   100,
	}
}

func (c *fakeProviderClient) CreateTournament(ctx context.Context, name string, typ provider.TournamentType, description string) (*provider.RemoteTournament, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created++
	id := fmt.Sprintf("rt-%d", c.created)
	return &provider.RemoteTournament{
		ID:   id,
		Name: name,
		URL:  "https://bracket.example/" + id,
	}, nil
}

func (c *fakeProviderClient) AddParticipant(ctx context.Context, remoteID, participantName string) (*provider.RemoteParticipant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.participants[remoteID] {
		if p.Name == participantName {
			return nil, provider.ErrDuplicateParticipant
		}
	}
	p := provider.RemoteParticipant{ID: c.nextPartID, Name: participantName}
	c.nextPartID++
	c.participants[remoteID] = append(c.participants[remoteID], p)
	return &p, nil
}

func (c *fakeProviderClient) StartTournament(ctx context.Context, remoteID string) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started[remoteID] {
		return provider.ErrAlreadyStarted
	}
	c.started[remoteID] = true
	return nil
}

func (c *fakeProviderClient) GetTournament(ctx context.Context, remoteID string) (*provider.RemoteTournament, error) {
	return &provider.RemoteTournament{ID: remoteID, Started: c.started[remoteID]}, nil
}

func (c *fakeProviderClient) GetParticipants(ctx context.Context, remoteID string) ([]provider.RemoteParticipant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]provider.RemoteParticipant(nil), c.participants[remoteID]...), nil
}

func (c *fakeProviderClient) GetMatches(ctx context.Context, remoteID string) ([]provider.RemoteMatch, error) {
	if c.matchErr != nil {
		return nil, c.matchErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]provider.RemoteMatch(nil), c.matches[remoteID]...), nil
}

func (c *fakeProviderClient) UpdateMatchScore(ctx context.Context, remoteID, remoteMatchID string, winnerParticipantID int64, scoresCSV string, loserParticipantID *int64) error {
	if c.scoreErr != nil {
		return c.scoreErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scorePushes = append(c.scorePushes, fmt.Sprintf("%s/%s %s -> %d", remoteID, remoteMatchID, scoresCSV, winnerParticipantID))
	return nil
}
