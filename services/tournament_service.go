package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
	"github.com/cyberarena/tournament-bot/storage"
	"github.com/cyberarena/tournament-bot/utils"
)

// validStatusTransitions задаёт жизненный цикл турнира. The registration
// to in_progress edge is owned by the bracket coordinator, not by the
// generic status update.
var validStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusRegistration: {models.StatusCanceled},
	models.StatusInProgress:   {models.StatusPaused, models.StatusCompleted, models.StatusCanceled},
	models.StatusPaused:       {models.StatusInProgress, models.StatusCanceled},
	models.StatusCompleted:    {},
	models.StatusCanceled:     {},
}

type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	userRepo       repositories.UserRepository
	chatClient     chat.Client
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	chatClient chat.Client,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		chatClient:     chatClient,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

// Create validates the schedule and persists the tournament in the
// registration status.
func (s *TournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	if _, err := s.gameRepo.GetByID(ctx, tournament.GameID); err != nil {
		return err
	}
	if !tournament.RegStart.Before(tournament.RegEnd) || !tournament.RegEnd.Before(tournament.StartAt) {
		return ErrTournamentInvalidDates
	}
	if tournament.EditDeadline.IsZero() {
		tournament.EditDeadline = tournament.RegEnd
	}
	tournament.Status = models.StatusRegistration
	return s.tournamentRepo.Create(ctx, tournament)
}

func (s *TournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachLogoURL(tournament)
	return tournament, nil
}

func (s *TournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		s.attachLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *TournamentService) attachLogoURL(t *models.Tournament) {
	if t.LogoKey != nil && s.uploader != nil {
		if u := s.uploader.PublicURL(*t.LogoKey); u != "" {
			t.LogoURL = &u
		}
	}
}

// ChangeStatus applies one admin-driven lifecycle edge. Starting a
// tournament goes through BracketService instead, because it has remote
// side effects.
func (s *TournamentService) ChangeStatus(ctx context.Context, id int, target models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validStatusTransitions[tournament.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, target)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, target); err != nil {
		return nil, err
	}
	tournament.Status = target
	s.logger.Info("tournament status changed",
		slog.Int("tournament_id", id), slog.String("status", string(target)))
	return tournament, nil
}

// SetRequiredChannels replaces the channel-subscription gate list.
func (s *TournamentService) SetRequiredChannels(ctx context.Context, id int, channels []string) error {
	seen := make(map[string]bool, len(channels))
	cleaned := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		cleaned = append(cleaned, ch)
	}
	return s.tournamentRepo.UpdateRequiredChannels(ctx, id, cleaned)
}

// AttachLogo downloads the chat file behind fileRef and mirrors it into
// object storage so the web bracket viewer can serve it.
func (s *TournamentService) AttachLogo(ctx context.Context, id int, fileRef, contentType string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	data, err := s.chatClient.DownloadFile(ctx, fileRef)
	if err != nil {
		return fmt.Errorf("failed to download logo file: %w", err)
	}

	key := fmt.Sprintf("tournaments/%d/logo", id)
	if _, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateLogo(ctx, id, &fileRef, &key); err != nil {
		return err
	}

	// Stale object under the old key when the key scheme changes.
	if tournament.LogoKey != nil && *tournament.LogoKey != key {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete previous logo object",
				slog.String("key", *tournament.LogoKey), slog.Any("error", err))
		}
	}
	return nil
}

// AttachRules stores the chat file handle of the rules document. Rules are
// re-sent through the chat platform, so no mirroring is needed.
func (s *TournamentService) AttachRules(ctx context.Context, id int, fileRef string) error {
	return s.tournamentRepo.UpdateRulesFileRef(ctx, id, &fileRef)
}

// RemindClosedRegistrations notifies every admin about tournaments whose
// registration window has ended but which have not been started yet. Each
// tournament is reminded once; the scheduler calls this on a ticker.
func (s *TournamentService) RemindClosedRegistrations(ctx context.Context) error {
	tournaments, err := s.tournamentRepo.ListRegistrationClosed(ctx, s.now().UTC())
	if err != nil {
		return err
	}
	if len(tournaments) == 0 {
		return nil
	}

	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return err
	}

	for _, t := range tournaments {
		text := fmt.Sprintf(
			"⏰ Регистрация на турнир <b>%s</b> завершена.\nПодтвердите заявки и запустите турнир.",
			utils.EscapeHTML(t.Name))
		for _, admin := range admins {
			err := s.chatClient.SendMessage(ctx, chat.Message{ChatID: admin.ExternalID, Text: text})
			if err != nil {
				s.logger.Warn("failed to deliver registration reminder",
					slog.Int("tournament_id", t.ID),
					slog.Int64("admin_external_id", admin.ExternalID),
					slog.Any("error", err))
			}
		}
		if err := s.tournamentRepo.MarkRegEndReminded(ctx, t.ID); err != nil {
			s.logger.Error("failed to mark reminder sent",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
		}
	}
	return nil
}
