package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
)

// UnsubscribedError lists every required channel the captain is not a member
// of, so the UI can prompt once.
type UnsubscribedError struct {
	Channels []string
}

func (e *UnsubscribedError) Error() string {
	return fmt.Sprintf("validation failed: %s (%s)", ValidationUnsubscribed, strings.Join(e.Channels, ", "))
}

// RegistrationService guards captain registration and roster collection.
type RegistrationService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	gameRepo       repositories.GameRepository
	chatClient     chat.Client

	now func() time.Time
}

func NewRegistrationService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	gameRepo repositories.GameRepository,
	chatClient chat.Client,
) *RegistrationService {
	return &RegistrationService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		gameRepo:       gameRepo,
		chatClient:     chatClient,
		now:            time.Now,
	}
}

// RegisterTeam validates a captain's registration attempt and creates the
// pending team. Preconditions are evaluated in a fixed order; the first
// failure short-circuits.
func (s *RegistrationService) RegisterTeam(ctx context.Context, captain *models.User, tournamentID int, teamName string) (*models.Team, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationNotOpen
	}

	now := s.now().UTC()
	if now.Before(tournament.RegStart) || now.After(tournament.RegEnd) {
		return nil, ErrRegistrationWindowClosed
	}

	approved, err := s.teamRepo.CountByStatus(ctx, tournamentID, models.TeamStatusApproved)
	if err != nil {
		return nil, err
	}
	if approved >= tournament.MaxTeams {
		return nil, ErrTournamentFull
	}

	registered, err := s.teamRepo.IsCaptainRegistered(ctx, captain.ID, tournamentID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, ErrCaptainAlreadyRegistered
	}

	if err := s.checkChannelGate(ctx, tournament.RequiredChannels, captain.ExternalID); err != nil {
		return nil, err
	}

	teamName = strings.TrimSpace(teamName)
	if err := ValidateTeamName(teamName); err != nil {
		return nil, err
	}

	team := &models.Team{
		TournamentID:  tournamentID,
		Name:          teamName,
		CaptainUserID: captain.ID,
		Status:        models.TeamStatusPending,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// checkChannelGate verifies membership on every required channel. Individual
// failures are collected so the captain sees the full list at once; a
// transport failure on any channel fails the gate rather than approving an
// unchecked registration.
func (s *RegistrationService) checkChannelGate(ctx context.Context, channels []string, captainExternalID int64) error {
	var unsubscribed []string
	for _, channel := range channels {
		status, err := s.chatClient.GetChatMember(ctx, channel, captainExternalID)
		if err != nil {
			return fmt.Errorf("failed to check membership of %s: %w", channel, err)
		}
		if !status.Subscribed() {
			unsubscribed = append(unsubscribed, channel)
		}
	}
	if len(unsubscribed) > 0 {
		return &UnsubscribedError{Channels: unsubscribed}
	}
	return nil
}

// AddPlayer appends a roster entry to the captain's team, enforcing roster
// size limits and per-tournament uniqueness of nickname and in-game id.
func (s *RegistrationService) AddPlayer(ctx context.Context, captain *models.User, teamID int, player *models.Player) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainUserID != captain.ID && !captain.IsAdmin() {
		return ErrForbiddenOperation
	}
	if team.Status == models.TeamStatusRejected || team.Status == models.TeamStatusBlocked {
		return ErrTeamLocked
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if s.now().UTC().After(tournament.EditDeadline) {
		return ErrTeamLocked
	}

	game, err := s.gameRepo.GetByID(ctx, tournament.GameID)
	if err != nil {
		return err
	}

	roster, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	mains, subs := 0, 0
	for _, p := range roster {
		if p.IsSubstitute {
			subs++
		} else {
			mains++
		}
	}
	if player.IsSubstitute && subs >= game.RosterSubstituteSize {
		return ErrRosterFull
	}
	if !player.IsSubstitute && mains >= game.RosterMainSize {
		return ErrRosterFull
	}

	player.TeamID = teamID
	if player.IsSubstitute {
		player.Position = subs + 1
	} else {
		player.Position = mains + 1
	}
	return s.playerRepo.Create(ctx, tournament.ID, player)
}

// RemovePlayer drops a roster entry, subject to the same edit rules.
func (s *RegistrationService) RemovePlayer(ctx context.Context, captain *models.User, teamID, playerID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainUserID != captain.ID && !captain.IsAdmin() {
		return ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if s.now().UTC().After(tournament.EditDeadline) {
		return ErrTeamLocked
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player.TeamID != teamID {
		return repositories.ErrPlayerNotFound
	}
	return s.playerRepo.Delete(ctx, playerID)
}
