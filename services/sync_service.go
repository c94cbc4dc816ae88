package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyberarena/tournament-bot/brackets"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/provider"
	"github.com/cyberarena/tournament-bot/repositories"
	"golang.org/x/sync/errgroup"
)

// SyncService pulls the provider's match graph and reconciles it into the
// local store. Runs are safe to repeat and to overlap: the upsert is
// commutative under the remote match key, and local winners and scores are
// never overwritten by a sync.
type SyncService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	providerClient provider.Client
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewSyncService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	providerClient provider.Client,
	hub *brackets.Hub,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		providerClient: providerClient,
		hub:            hub,
		logger:         logger,
	}
}

// SyncMatches reconciles all matches of the tournament and returns the
// post-sync rows.
func (s *SyncService) SyncMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.RemoteBracketID == nil {
		return nil, ErrBracketNotCreated
	}
	remoteID := *tournament.RemoteBracketID

	var remoteMatches []provider.RemoteMatch
	var remoteParticipants []provider.RemoteParticipant

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		remoteMatches, err = s.providerClient.GetMatches(gCtx, remoteID)
		if err != nil {
			return fmt.Errorf("failed to fetch remote matches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		remoteParticipants, err = s.providerClient.GetParticipants(gCtx, remoteID)
		if err != nil {
			return fmt.Errorf("failed to fetch remote participants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	participantMap, err := s.buildParticipantMap(ctx, tournamentID, remoteParticipants)
	if err != nil {
		return nil, err
	}

	upserts := make([]repositories.MatchUpsert, 0, len(remoteMatches))
	for _, rm := range remoteMatches {
		upserts = append(upserts, normalizeRemoteMatch(rm, participantMap))
	}

	synced, err := s.matchRepo.SyncFromRemote(ctx, tournamentID, upserts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("matches synchronized",
		slog.Int("tournament_id", tournamentID),
		slog.Int("remote_matches", len(remoteMatches)),
		slog.Int("mapped_participants", len(participantMap)))

	s.publishBracket(ctx, tournament)
	return synced, nil
}

// LocalBracket groups the locally stored matches into display rounds
// without touching the provider.
func (s *SyncService) LocalBracket(ctx context.Context, tournamentID int) ([]brackets.RoundGroup, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}
	return brackets.GroupMatches(matches, tournament.Format), nil
}

// buildParticipantMap joins remote participants to local approved teams by
// name. Remote names with no local counterpart are dropped, not fatal.
func (s *SyncService) buildParticipantMap(ctx context.Context, tournamentID int, remoteParticipants []provider.RemoteParticipant) (map[int64]int, error) {
	approvedStatus := models.TeamStatusApproved
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, &approvedStatus)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(teams))
	for _, team := range teams {
		byName[team.Name] = team.ID
	}

	participantMap := make(map[int64]int, len(remoteParticipants))
	for _, rp := range remoteParticipants {
		if teamID, ok := byName[rp.Name]; ok {
			participantMap[rp.ID] = teamID
		} else {
			s.logger.Warn("remote participant has no local team",
				slog.Int("tournament_id", tournamentID), slog.String("name", rp.Name))
		}
	}
	return participantMap, nil
}

// normalizeRemoteMatch converts the provider's signed-round descriptor into
// an upsert row: |round| plus a bracket side, and slot team ids resolved
// through the participant map.
func normalizeRemoteMatch(rm provider.RemoteMatch, participantMap map[int64]int) repositories.MatchUpsert {
	round := rm.Round
	bracketType := models.BracketWinner
	if round < 0 {
		bracketType = models.BracketLoser
		round = -round
	}

	p1, p2 := rm.SlotParticipants()
	return repositories.MatchUpsert{
		RemoteMatchID: rm.ID,
		RoundNumber:   round,
		MatchNumber:   rm.PlayOrder,
		BracketType:   bracketType,
		Team1ID:       mapParticipant(participantMap, p1),
		Team2ID:       mapParticipant(participantMap, p2),
	}
}

func mapParticipant(participantMap map[int64]int, remoteID *int64) *int {
	if remoteID == nil {
		return nil
	}
	if teamID, ok := participantMap[*remoteID]; ok {
		return &teamID
	}
	return nil
}

func (s *SyncService) publishBracket(ctx context.Context, tournament *models.Tournament) {
	if s.hub == nil {
		return
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournament.ID, nil)
	if err != nil {
		s.logger.Warn("failed to load matches for bracket publish",
			slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		return
	}
	s.hub.Publish(brackets.Update{
		Type:         "BRACKET_UPDATED",
		TournamentID: tournament.ID,
		Groups:       brackets.GroupMatches(matches, tournament.Format),
	})
}
