package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cyberarena/tournament-bot/chat"
	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
)

// BroadcastService fans a message out to every registered user. Sends are
// paced by a rate limiter so the chat platform does not throttle the bot,
// and the fan-out runs detached so the admin command returns immediately.
type BroadcastService struct {
	userRepo   repositories.UserRepository
	chatClient chat.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewBroadcastService(userRepo repositories.UserRepository, chatClient chat.Client, logger *slog.Logger) *BroadcastService {
	// ~25 messages per second, below the platform's global limit.
	return &BroadcastService{
		userRepo:   userRepo,
		chatClient: chatClient,
		limiter:    rate.NewLimiter(rate.Limit(25), 5),
		logger:     logger,
	}
}

// Broadcast queues text for delivery to all non-blocked users and returns
// the batch id for correlating the delivery logs.
func (s *BroadcastService) Broadcast(ctx context.Context, text string) (string, int, error) {
	users, err := s.userRepo.List(ctx, 0, 0)
	if err != nil {
		return "", 0, err
	}

	recipients := make([]models.User, 0, len(users))
	for _, u := range users {
		if !u.Blocked {
			recipients = append(recipients, u)
		}
	}

	batchID := uuid.NewString()
	s.logger.Info("broadcast started",
		slog.String("batch_id", batchID), slog.Int("recipients", len(recipients)))

	go s.deliver(batchID, text, recipients)
	return batchID, len(recipients), nil
}

func (s *BroadcastService) deliver(batchID, text string, recipients []models.User) {
	// Detached from the admin's request; bounded only by the batch size.
	ctx := context.Background()
	sent, failed := 0, 0
	for _, u := range recipients {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		err := s.chatClient.SendMessage(ctx, chat.Message{ChatID: u.ExternalID, Text: text})
		if err != nil {
			failed++
			s.logger.Warn("broadcast delivery failed",
				slog.String("batch_id", batchID),
				slog.Int64("external_id", u.ExternalID),
				slog.Any("error", err))
			continue
		}
		sent++
	}
	s.logger.Info("broadcast finished",
		slog.String("batch_id", batchID), slog.Int("sent", sent), slog.Int("failed", failed))
}
