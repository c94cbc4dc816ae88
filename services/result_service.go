package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/provider"
	"github.com/cyberarena/tournament-bot/repositories"
)

// CommitOutcome reports how far a result commit propagated. The local write
// always precedes the provider push, so Match is authoritative even when
// ProviderPushed is false.
type CommitOutcome struct {
	Match          *models.Match
	ProviderPushed bool
	// ProviderURL points the admin at the provider UI for manual
	// reconciliation when the push failed.
	ProviderURL string
}

// ResultService commits admin-entered match results: local persistence
// first, best-effort provider push, then a re-sync to reveal newly unlocked
// matches.
type ResultService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	providerClient provider.Client
	syncService    *SyncService
	logger         *slog.Logger
}

func NewResultService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	providerClient provider.Client,
	syncService *SyncService,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		providerClient: providerClient,
		syncService:    syncService,
		logger:         logger,
	}
}

// CommitResult persists the scores and winner for a match. Re-entering a
// completed match follows the same path and overwrites the prior result; no
// bracket rewind is attempted. The provider decides what rewiring, if any,
// happens, and the closing sync reflects it.
func (s *ResultService) CommitResult(ctx context.Context, matchID, team1Score, team2Score int) (*CommitOutcome, error) {
	if team1Score < 0 || team2Score < 0 {
		return nil, newValidationError(ValidationBadScore, "scores must be non-negative")
	}
	if team1Score == team2Score {
		return nil, newValidationError(ValidationTiedScore, fmt.Sprintf("%d-%d", team1Score, team2Score))
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCanceled {
		return nil, ErrMatchCancelled
	}
	if !match.Ready() {
		return nil, ErrMatchSlotsEmpty
	}

	winnerID := *match.Team1ID
	if team2Score > team1Score {
		winnerID = *match.Team2ID
	}

	updated, err := s.matchRepo.UpdateScore(ctx, matchID, team1Score, team2Score, winnerID)
	if err != nil {
		return nil, err
	}
	outcome := &CommitOutcome{Match: updated, ProviderPushed: true}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.RemoteURL != nil {
		outcome.ProviderURL = *tournament.RemoteURL
	}

	if tournament.RemoteBracketID != nil && match.RemoteMatchID != nil {
		if err := s.pushToProvider(ctx, tournament, updated, winnerID); err != nil {
			// Local write already succeeded; the admin is told to
			// reconcile via the provider UI.
			outcome.ProviderPushed = false
			s.logger.Error("provider score push failed, result saved locally",
				slog.Int("match_id", matchID),
				slog.Int("tournament_id", tournament.ID),
				slog.Any("error", err))
		}
	}

	if _, err := s.syncService.SyncMatches(ctx, tournament.ID); err != nil {
		s.logger.Warn("post-commit sync failed",
			slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
	}
	return outcome, nil
}

// pushToProvider resolves the winner and loser participant ids by re-fetching
// the remote participant list and joining on team name, then submits the
// score line.
func (s *ResultService) pushToProvider(ctx context.Context, tournament *models.Tournament, match *models.Match, winnerID int) error {
	team1, err := s.teamRepo.GetByID(ctx, *match.Team1ID)
	if err != nil {
		return err
	}
	team2, err := s.teamRepo.GetByID(ctx, *match.Team2ID)
	if err != nil {
		return err
	}

	participants, err := s.providerClient.GetParticipants(ctx, *tournament.RemoteBracketID)
	if err != nil {
		return fmt.Errorf("failed to fetch participants for score push: %w", err)
	}
	byName := make(map[string]int64, len(participants))
	for _, p := range participants {
		byName[p.Name] = p.ID
	}

	winnerName, loserName := team1.Name, team2.Name
	if winnerID == team2.ID {
		winnerName, loserName = team2.Name, team1.Name
	}

	winnerParticipantID, ok := byName[winnerName]
	if !ok {
		return fmt.Errorf("winner team %q has no remote participant", winnerName)
	}
	var loserParticipantID *int64
	if id, ok := byName[loserName]; ok {
		loserParticipantID = &id
	}

	scoresCSV := provider.FormatScoresCSV(*match.Team1Score, *match.Team2Score)
	err = s.providerClient.UpdateMatchScore(ctx,
		*tournament.RemoteBracketID, *match.RemoteMatchID,
		winnerParticipantID, scoresCSV, loserParticipantID)
	if err != nil {
		return fmt.Errorf("failed to push score %s: %w", scoresCSV, err)
	}
	return nil
}

// MatchDetail loads a match together with its slot teams. A nil team means
// the slot has not been filled by the bracket yet.
func (s *ResultService) MatchDetail(ctx context.Context, matchID int) (*models.Match, *models.Team, *models.Team, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, nil, err
	}
	var team1, team2 *models.Team
	if match.Team1ID != nil {
		if team1, err = s.teamRepo.GetByID(ctx, *match.Team1ID); err != nil {
			return nil, nil, nil, err
		}
	}
	if match.Team2ID != nil {
		if team2, err = s.teamRepo.GetByID(ctx, *match.Team2ID); err != nil {
			return nil, nil, nil, err
		}
	}
	return match, team1, team2, nil
}

// CancelMatch marks a match cancelled locally.
func (s *ResultService) CancelMatch(ctx context.Context, matchID int) error {
	return s.matchRepo.Cancel(ctx, matchID)
}
