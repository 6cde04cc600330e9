package maintenance

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
)

// Purger drops queued activity comments older than a cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

type Config struct {
	// ReminderRetention is how long sent ledger entries are kept.
	ReminderRetention time.Duration
	// OutboxRetention is how long undelivered activity comments are kept.
	OutboxRetention time.Duration
}

// Result reports what a cleanup removed.
type Result struct {
	Reminders int64
	Comments  int
}

// UseCase purges state that has outlived its retention horizon.
type UseCase struct {
	ledger repository.ReminderRepository
	outbox Purger
	cfg    Config
	logger *zap.Logger
}

// New builds the cleanup. outbox may be nil.
func New(ledger repository.ReminderRepository, outbox Purger, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.ReminderRetention <= 0 {
		cfg.ReminderRetention = 30 * 24 * time.Hour
	}
	if cfg.OutboxRetention <= 0 {
		cfg.OutboxRetention = 72 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{ledger: ledger, outbox: outbox, cfg: cfg, logger: logger}
}

// Run removes ledger entries and outbox comments older than their retention.
// Both purges are attempted even if one fails.
func (uc *UseCase) Run(ctx context.Context, now time.Time) (Result, error) {
	var (
		result Result
		errs   error
	)

	removed, err := uc.ledger.DeleteSentBefore(ctx, now.Add(-uc.cfg.ReminderRetention))
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	result.Reminders = removed

	if uc.outbox != nil {
		comments, err := uc.outbox.Purge(ctx, now.Add(-uc.cfg.OutboxRetention))
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		result.Comments = comments
	}

	logger.FromContext(ctx, uc.logger).Info("cleanup finished",
		zap.Int64("reminders_removed", result.Reminders),
		zap.Int("comments_removed", result.Comments),
		zap.Error(errs))
	return result, errs
}
