package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/provider"
	"github.com/cyberarena/tournament-bot/repositories"
)

// BracketService creates the remote tournament, seeds approved teams into it
// and starts it. Every step is idempotent, so a rerun after a partial
// failure converges as long as team names are stable.
type BracketService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	providerClient provider.Client
	syncService    *SyncService
	logger         *slog.Logger
}

func NewBracketService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	providerClient provider.Client,
	syncService *SyncService,
	logger *slog.Logger,
) *BracketService {
	return &BracketService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		providerClient: providerClient,
		syncService:    syncService,
		logger:         logger,
	}
}

func providerType(format models.TournamentFormat) provider.TournamentType {
	switch format {
	case models.FormatDoubleElimination:
		return provider.TypeDoubleElimination
	case models.FormatRoundRobin:
		return provider.TypeRoundRobin
	case models.FormatSwiss:
		return provider.TypeSwiss
	case models.FormatGroupsPlayoffs:
		// The provider runs the group stage itself; the playoff stage is
		// configured on its side.
		return provider.TypeRoundRobin
	default:
		return provider.TypeSingleElimination
	}
}

// StartTournament runs the full coordination sequence for a tournament in
// registration: create the remote bracket if needed, upload missing
// participants, start it remotely, flip the local status and materialize the
// initial round.
func (s *BracketService) StartTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistration && tournament.Status != models.StatusPaused {
		return nil, ErrTournamentInvalidStatusTransition
	}

	approvedStatus := models.TeamStatusApproved
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID, &approvedStatus)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	if tournament.RemoteBracketID == nil {
		if err := s.createRemote(ctx, tournament); err != nil {
			return nil, err
		}
	}

	if err := s.seedParticipants(ctx, *tournament.RemoteBracketID, teams); err != nil {
		return nil, err
	}

	if err := s.providerClient.StartTournament(ctx, *tournament.RemoteBracketID); err != nil {
		if !errors.Is(err, provider.ErrAlreadyStarted) {
			return nil, fmt.Errorf("failed to start remote tournament: %w", err)
		}
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusInProgress); err != nil {
		return nil, err
	}
	tournament.Status = models.StatusInProgress

	if _, err := s.syncService.SyncMatches(ctx, tournamentID); err != nil {
		// The bracket exists and is started; the initial round will appear
		// on the next manual sync.
		s.logger.Error("initial match sync failed",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", tournamentID),
		slog.String("remote_bracket_id", *tournament.RemoteBracketID),
		slog.Int("teams", len(teams)))
	return tournament, nil
}

// createRemote creates the provider tournament and persists its identifier
// before anything else happens, so a crash between the two calls is
// recoverable by rerunning.
func (s *BracketService) createRemote(ctx context.Context, tournament *models.Tournament) error {
	description := ""
	if tournament.Description != nil {
		description = *tournament.Description
	}

	remote, err := s.providerClient.CreateTournament(ctx, tournament.Name, providerType(tournament.Format), description)
	if err != nil {
		return fmt.Errorf("failed to create remote tournament: %w", err)
	}

	err = s.tournamentRepo.SetRemoteBracketID(ctx, tournament.ID, remote.ID, remote.URL)
	if err != nil {
		if errors.Is(err, repositories.ErrRemoteBracketIDSet) {
			// A concurrent run won the race; reload and keep its id.
			fresh, getErr := s.tournamentRepo.GetByID(ctx, tournament.ID)
			if getErr != nil {
				return getErr
			}
			tournament.RemoteBracketID = fresh.RemoteBracketID
			tournament.RemoteURL = fresh.RemoteURL
			return nil
		}
		return err
	}
	tournament.RemoteBracketID = &remote.ID
	tournament.RemoteURL = &remote.URL
	return nil
}

// seedParticipants uploads every approved team whose name is not yet present
// remotely. Team name is the join key between the two stores; duplicates
// reported by the provider are success.
func (s *BracketService) seedParticipants(ctx context.Context, remoteID string, teams []*models.Team) error {
	existing, err := s.providerClient.GetParticipants(ctx, remoteID)
	if err != nil {
		return fmt.Errorf("failed to fetch remote participants: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, p := range existing {
		present[p.Name] = true
	}

	for _, team := range teams {
		if present[team.Name] {
			continue
		}
		if _, err := s.providerClient.AddParticipant(ctx, remoteID, team.Name); err != nil {
			if errors.Is(err, provider.ErrDuplicateParticipant) {
				continue
			}
			return fmt.Errorf("failed to add participant %q: %w", team.Name, err)
		}
	}
	return nil
}
