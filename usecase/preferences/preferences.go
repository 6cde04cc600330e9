package preferences

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// Patch is a partial update of a user's notification settings. Nil fields are left unchanged.
type Patch struct {
	DigestEnabled        *bool `json:"digest_enabled"`
	DigestHour           *int  `json:"digest_hour" validate:"omitempty,gte=0,lte=23"`
	NotificationsEnabled *bool `json:"notifications_enabled"`
}

func (p Patch) apply(settings domain.DigestSettings) domain.DigestSettings {
	if p.DigestEnabled != nil {
		settings.DigestEnabled = *p.DigestEnabled
	}
	if p.DigestHour != nil {
		settings.DigestHour = *p.DigestHour
	}
	if p.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *p.NotificationsEnabled
	}
	return settings
}

type UseCase struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	logger   *zap.Logger
}

func New(users repository.UserRepository, settings repository.SettingsRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		settings: settings,
		logger:   logger,
	}
}

// Get returns the stored settings of userID, or the defaults if none were saved.
func (uc *UseCase) Get(ctx context.Context, userID string) (domain.DigestSettings, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return domain.DigestSettings{}, err
	}
	return uc.settings.GetOrDefault(ctx, userID)
}

// Update merges patch into the current settings and stores the result.
func (uc *UseCase) Update(ctx context.Context, userID string, patch Patch) (domain.DigestSettings, error) {
	current, err := uc.Get(ctx, userID)
	if err != nil {
		return domain.DigestSettings{}, err
	}

	next := patch.apply(current)
	next.UserID = userID
	if next.DigestHour < 0 || next.DigestHour > 23 {
		return domain.DigestSettings{}, domain.NewError(domain.ErrCodeInvalid, "digest hour must be between 0 and 23")
	}

	if err := uc.settings.Upsert(ctx, next); err != nil {
		return domain.DigestSettings{}, err
	}
	uc.logger.Info("notification settings updated",
		zap.String("user_id", userID),
		zap.Bool("digest_enabled", next.DigestEnabled),
		zap.Int("digest_hour", next.DigestHour),
		zap.Bool("notifications_enabled", next.NotificationsEnabled))
	return next, nil
}
