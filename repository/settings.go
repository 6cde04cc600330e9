package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type SettingsRepository interface {
	// GetOrDefault never fails for a missing row; it synthesizes domain.DefaultDigestSettings.
	GetOrDefault(ctx context.Context, userID string) (domain.DigestSettings, error)
	Upsert(ctx context.Context, settings domain.DigestSettings) error
}
