package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/utils"
)

// TeamService covers admin moderation of registrations and captain-facing
// team reads.
type TeamService struct {
	teamRepo       repositories.TeamRepository
	playerRepo     repositories.PlayerRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	chatClient     chat.Client
	logger         *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	chatClient chat.Client,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:       teamRepo,
		playerRepo:     playerRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		chatClient:     chatClient,
		logger:         logger,
	}
}

func (s *TeamService) GetTeamWithRoster(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Players = players

	captain, err := s.userRepo.GetByID(ctx, team.CaptainUserID)
	if err == nil {
		team.Captain = captain
	}
	return team, nil
}

func (s *TeamService) ListByTournament(ctx context.Context, tournamentID int, status *models.TeamStatus) ([]*models.Team, error) {
	return s.teamRepo.ListByTournament(ctx, tournamentID, status)
}

func (s *TeamService) Approve(ctx context.Context, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Approve(ctx, teamID); err != nil {
		return err
	}
	s.notifyCaptain(ctx, team,
		fmt.Sprintf("Команда <b>%s</b> допущена к турниру.", utils.EscapeHTML(team.Name)))
	return nil
}

func (s *TeamService) Reject(ctx context.Context, teamID int, reason string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Reject(ctx, teamID, reason); err != nil {
		return err
	}
	s.notifyCaptain(ctx, team,
		fmt.Sprintf("Заявка команды <b>%s</b> отклонена: %s",
			utils.EscapeHTML(team.Name), utils.EscapeHTML(reason)))
	return nil
}

func (s *TeamService) Block(ctx context.Context, teamID int, reason string, scope models.BlockScope, actor *models.User) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Block(ctx, teamID, reason, scope, actor.ID); err != nil {
		return err
	}
	if scope == models.BlockScopeGlobal {
		if err := s.userRepo.UpdateBlocked(ctx, team.CaptainUserID, true); err != nil {
			s.logger.Error("failed to block captain globally",
				slog.Int("team_id", teamID), slog.Any("error", err))
		}
	}
	s.notifyCaptain(ctx, team,
		fmt.Sprintf("Команда <b>%s</b> заблокирована: %s",
			utils.EscapeHTML(team.Name), utils.EscapeHTML(reason)))
	return nil
}

func (s *TeamService) Unblock(ctx context.Context, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.teamRepo.Unblock(ctx, teamID); err != nil {
		return err
	}
	if team.BlockScope != nil && *team.BlockScope == models.BlockScopeGlobal {
		if err := s.userRepo.UpdateBlocked(ctx, team.CaptainUserID, false); err != nil {
			s.logger.Error("failed to unblock captain",
				slog.Int("team_id", teamID), slog.Any("error", err))
		}
	}
	s.notifyCaptain(ctx, team,
		fmt.Sprintf("Команда <b>%s</b> разблокирована.", utils.EscapeHTML(team.Name)))
	return nil
}

// Rename changes the team name while it is still safe to do so. The name is
// the join key with the bracket provider, so renames are refused once the
// remote bracket exists.
func (s *TeamService) Rename(ctx context.Context, actor *models.User, teamID int, newName string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainUserID != actor.ID && !actor.IsAdmin() {
		return ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, team.TournamentID)
	if err != nil {
		return err
	}
	if tournament.RemoteBracketID != nil {
		return ErrTeamLocked
	}

	if err := ValidateTeamName(newName); err != nil {
		return err
	}
	return s.teamRepo.Rename(ctx, teamID, newName)
}

// notifyCaptain is best-effort: moderation outcomes stand even when the chat
// platform is unreachable.
func (s *TeamService) notifyCaptain(ctx context.Context, team *models.Team, text string) {
	captain, err := s.userRepo.GetByID(ctx, team.CaptainUserID)
	if err != nil {
		s.logger.Warn("captain lookup failed for notification",
			slog.Int("team_id", team.ID), slog.Any("error", err))
		return
	}
	err = s.chatClient.SendMessage(ctx, chat.Message{ChatID: captain.ExternalID, Text: text})
	if err != nil {
		s.logger.Warn("captain notification failed",
			slog.Int("team_id", team.ID), slog.Any("error", err))
	}
}
