package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates a Postgres-backed settings store.
func NewSettingsRepository(pool *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetOrDefault(ctx context.Context, userID string) (domain.DigestSettings, error) {
	const query = `
	SELECT digest_enabled, digest_hour, notifications_enabled
	FROM settings
	WHERE user_id = $1
	`
	settings := domain.DigestSettings{UserID: userID}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&settings.DigestEnabled, &settings.DigestHour, &settings.NotificationsEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultDigestSettings(userID), nil
	}
	if err != nil {
		return domain.DigestSettings{}, storeErr("get settings", err, nil)
	}
	return settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings domain.DigestSettings) error {
	if settings.UserID == "" || settings.DigestHour < 0 || settings.DigestHour > 23 {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO settings (user_id, digest_hour, digest_enabled, notifications_enabled, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET digest_hour = EXCLUDED.digest_hour,
		digest_enabled = EXCLUDED.digest_enabled,
		notifications_enabled = EXCLUDED.notifications_enabled,
		updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, settings.UserID, settings.DigestHour, settings.DigestEnabled, settings.NotificationsEnabled); err != nil {
		return storeErr("upsert settings", err, nil)
	}
	return nil
}
