package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cyberarena/tournament-bot/models"
	"github.com/cyberarena/tournament-bot/repositories"
)

// UserService creates users lazily on first contact and owns role and
// settings management.
type UserService struct {
	userRepo repositories.UserRepository
	// bootstrapAdmins are granted the admin role when first seen.
	bootstrapAdmins map[int64]bool
	defaultTimezone string
	logger          *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, adminExternalIDs []int64, defaultTimezone string, logger *slog.Logger) *UserService {
	admins := make(map[int64]bool, len(adminExternalIDs))
	for _, id := range adminExternalIDs {
		admins[id] = true
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &UserService{userRepo: userRepo, bootstrapAdmins: admins, defaultTimezone: defaultTimezone, logger: logger}
}

// EnsureUser returns the user behind externalID, creating the record on
// first contact. The display name is refreshed opportunistically from the
// inbound update.
func (s *UserService) EnsureUser(ctx context.Context, externalID int64, displayName string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err == nil {
		if displayName != "" && displayName != user.DisplayName {
			if err := s.userRepo.UpdateDisplayName(ctx, user.ID, displayName); err != nil {
				s.logger.Warn("failed to refresh display name",
					slog.Int64("external_id", externalID), slog.Any("error", err))
			} else {
				user.DisplayName = displayName
			}
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	role := models.RoleUser
	if s.bootstrapAdmins[externalID] {
		role = models.RoleAdmin
	}
	user = &models.User{
		ExternalID:  externalID,
		DisplayName: displayName,
		Role:        role,
		Timezone:    s.defaultTimezone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent first messages race on the unique external_id.
		if errors.Is(err, repositories.ErrUserIDConflict) {
			return s.userRepo.GetByExternalID(ctx, externalID)
		}
		return nil, err
	}
	s.logger.Info("user created",
		slog.Int64("external_id", externalID), slog.String("role", string(role)))
	return user, nil
}

// SetRole toggles a user between the user and admin roles.
func (s *UserService) SetRole(ctx context.Context, actor *models.User, userID int, role models.UserRole) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.userRepo.UpdateRole(ctx, userID, role)
}

func (s *UserService) SetBlocked(ctx context.Context, actor *models.User, userID int, blocked bool) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	return s.userRepo.UpdateBlocked(ctx, userID, blocked)
}

func (s *UserService) UpdateSettings(ctx context.Context, userID int, timezone, locale string) error {
	return s.userRepo.UpdateSettings(ctx, userID, timezone, locale)
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}
