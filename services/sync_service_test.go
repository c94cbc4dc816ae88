package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func int64Ptr(v int64) *int64 { return &v }

type syncFixture struct {
	service        *SyncService
	tournamentRepo *fakeTournamentRepo
	teamRepo       *fakeTeamRepo
	matchRepo      *fakeMatchRepo
	providerClient *fakeProviderClient
	tournament     *models.Tournament
	alpha, bravo   *models.Team
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	matchRepo := newFakeMatchRepo()
	providerClient := newFakeProviderClient()

	remoteID, remoteURL := "rt-1", "https://bracket.example/rt-1"
	tournament := tournamentRepo.add(&models.Tournament{
		Name:            "Spring Cup",
		Format:          models.FormatDoubleElimination,
		Status:          models.StatusInProgress,
		RemoteBracketID: &remoteID,
		RemoteURL:       &remoteURL,
	})

	alpha := teamRepo.add(&models.Team{TournamentID: tournament.ID, Name: "Alpha", Status: models.TeamStatusApproved})
	bravo := teamRepo.add(&models.Team{TournamentID: tournament.ID, Name: "Bravo", Status: models.TeamStatusApproved})

	providerClient.participants[remoteID] = []provider.RemoteParticipant{
		{ID: 101, Name: "Alpha"},
		{ID: 102, Name: "Bravo"},
	}

	service := NewSyncService(tournamentRepo, teamRepo, matchRepo, providerClient, nil, discardLogger())
	return &syncFixture{
		service:        service,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		providerClient: providerClient,
		tournament:     tournament,
		alpha:          alpha,
		bravo:          bravo,
	}
}

func TestSyncMatches_RequiresRemoteBracket(t *testing.T) {
	f := newSyncFixture(t)
	bare := f.tournamentRepo.add(&models.Tournament{Name: "No Bracket", Status: models.StatusRegistration})

	_, err := f.service.SyncMatches(context.Background(), bare.ID)
	assert.ErrorIs(t, err, ErrBracketNotCreated)
}

func TestSyncMatches_NormalizesSignedRounds(t *testing.T) {
	f := newSyncFixture(t)
	f.providerClient.matches["rt-1"] = []provider.RemoteMatch{
		{ID: "m1", Round: 1, PlayOrder: 1, Player1ID: int64Ptr(101), Player2ID: int64Ptr(102)},
		{ID: "m2", Round: -1, PlayOrder: 2},
	}

	synced, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, synced, 2)

	byRemote := make(map[string]*models.Match)
	for _, m := range synced {
		byRemote[*m.RemoteMatchID] = m
	}

	winner := byRemote["m1"]
	assert.Equal(t, 1, winner.RoundNumber)
	assert.Equal(t, models.BracketWinner, winner.BracketType)
	require.NotNil(t, winner.Team1ID)
	require.NotNil(t, winner.Team2ID)
	assert.Equal(t, f.alpha.ID, *winner.Team1ID)
	assert.Equal(t, f.bravo.ID, *winner.Team2ID)

	loser := byRemote["m2"]
	assert.Equal(t, 1, loser.RoundNumber)
	assert.Equal(t, models.BracketLoser, loser.BracketType)
	assert.Nil(t, loser.Team1ID)
}

func TestSyncMatches_ParticipantsFromPointsSideList(t *testing.T) {
	f := newSyncFixture(t)
	f.providerClient.matches["rt-1"] = []provider.RemoteMatch{
		{ID: "m1", Round: 1, PlayOrder: 1, PointsByParticipant: []provider.ParticipantPoints{
			{ParticipantID: 102, Points: 0},
			{ParticipantID: 101, Points: 0},
		}},
	}

	synced, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	require.NotNil(t, synced[0].Team1ID)
	assert.Equal(t, f.bravo.ID, *synced[0].Team1ID)
	require.NotNil(t, synced[0].Team2ID)
	assert.Equal(t, f.alpha.ID, *synced[0].Team2ID)
}

func TestSyncMatches_Idempotent(t *testing.T) {
	f := newSyncFixture(t)
	f.providerClient.matches["rt-1"] = []provider.RemoteMatch{
		{ID: "m1", Round: 1, PlayOrder: 1, Player1ID: int64Ptr(101), Player2ID: int64Ptr(102)},
	}

	first, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	second, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "repeat sync must update, not duplicate")

	all, err := f.matchRepo.ListByTournament(context.Background(), f.tournament.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncMatches_KeepsLocalResult(t *testing.T) {
	f := newSyncFixture(t)
	f.providerClient.matches["rt-1"] = []provider.RemoteMatch{
		{ID: "m1", Round: 1, PlayOrder: 1, Player1ID: int64Ptr(101), Player2ID: int64Ptr(102)},
	}

	synced, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	_, err = f.matchRepo.UpdateScore(context.Background(), synced[0].ID, 3, 1, f.alpha.ID)
	require.NoError(t, err)

	resynced, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, resynced, 1)
	require.NotNil(t, resynced[0].Team1Score)
	assert.Equal(t, 3, *resynced[0].Team1Score)
	require.NotNil(t, resynced[0].WinnerID)
	assert.Equal(t, f.alpha.ID, *resynced[0].WinnerID)
	assert.Equal(t, models.MatchStatusCompleted, resynced[0].Status)
}

func TestSyncMatches_UnknownParticipantDropped(t *testing.T) {
	f := newSyncFixture(t)
	f.providerClient.participants["rt-1"] = append(f.providerClient.participants["rt-1"],
		provider.RemoteParticipant{ID: 103, Name: "Ghost"})
	f.providerClient.matches["rt-1"] = []provider.RemoteMatch{
		{ID: "m1", Round: 1, PlayOrder: 1, Player1ID: int64Ptr(103), Player2ID: int64Ptr(101)},
	}

	synced, err := f.service.SyncMatches(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, synced, 1)
	assert.Nil(t, synced[0].Team1ID, "participant without a local team leaves the slot empty")
	require.NotNil(t, synced[0].Team2ID)
	assert.Equal(t, f.alpha.ID, *synced[0].Team2ID)
}
