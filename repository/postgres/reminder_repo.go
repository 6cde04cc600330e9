package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type reminderRepository struct {
	pool *pgxpool.Pool
}

// NewReminderRepository returns the Postgres-backed reminder ledger.
func NewReminderRepository(pool *pgxpool.Pool) repository.ReminderRepository {
	return &reminderRepository{pool: pool}
}

func (r *reminderRepository) Get(ctx context.Context, taskID, userID string, window domain.WindowType) (*domain.ReminderEntry, error) {
	const query = `
	SELECT task_id, user_id, type, sent_at
	FROM reminders
	WHERE task_id = $1 AND user_id = $2 AND type = $3
	`
	var (
		entry domain.ReminderEntry
		kind  string
	)
	err := r.pool.QueryRow(ctx, query, taskID, userID, string(window)).Scan(&entry.TaskID, &entry.UserID, &kind, &entry.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get reminder", err, nil)
	}
	entry.Type = domain.WindowType(kind)
	return &entry, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, taskID, userID string, window domain.WindowType, at time.Time) error {
	const query = `
	INSERT INTO reminders (task_id, user_id, type, sent_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (task_id, user_id, type) DO UPDATE
	SET sent_at = EXCLUDED.sent_at
	`
	if _, err := r.pool.Exec(ctx, query, taskID, userID, string(window), at); err != nil {
		return storeErr("mark reminder sent", err, nil)
	}
	return nil
}

func (r *reminderRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reminders WHERE sent_at < $1`, cutoff)
	if err != nil {
		return 0, storeErr("purge reminders", err, nil)
	}
	return tag.RowsAffected(), nil
}
