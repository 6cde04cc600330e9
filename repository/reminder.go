package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// ReminderRepository is the persisted idempotency ledger of sent reminders.
type ReminderRepository interface {
	// Get returns the entry for (taskID, userID, window) or nil when none exists.
	Get(ctx context.Context, taskID, userID string, window domain.WindowType) (*domain.ReminderEntry, error)
	// MarkSent upserts the entry with sent_at = at.
	MarkSent(ctx context.Context, taskID, userID string, window domain.WindowType, at time.Time) error
	// DeleteSentBefore purges entries whose sent_at is older than cutoff and returns how many were removed.
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
