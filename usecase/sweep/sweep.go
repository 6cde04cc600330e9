package sweep

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

const defaultOverdueRepeat = 24 * time.Hour

type Config struct {
	// Windows must be sorted by ascending lead.
	Windows []domain.ReminderWindow
	// OverdueRepeat is the minimum gap between two overdue escalations of a task.
	OverdueRepeat time.Duration
	Location      *time.Location
}

// Report summarizes one sweep. Err aggregates the per-item failures that were logged and skipped.
type Report struct {
	Sent        int
	Skipped     int
	Failed      int
	Unreachable int
	Err         error
}

func (r *Report) fail(err error) {
	r.Failed++
	r.Err = multierr.Append(r.Err, err)
}

// UseCase finds tasks entering a reminder window or past due and notifies their recipients
// at most once per window, keeping track in the reminder ledger.
type UseCase struct {
	tasks    repository.TaskRepository
	ledger   repository.ReminderRepository
	settings repository.SettingsRepository
	notifier usecase.Notifier
	cfg      Config
	logger   *zap.Logger
}

// New builds the sweep. settings may be nil, in which case every recipient is notified.
func New(
	tasks repository.TaskRepository,
	ledger repository.ReminderRepository,
	settings repository.SettingsRepository,
	notifier usecase.Notifier,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if len(cfg.Windows) == 0 {
		cfg.Windows = domain.DefaultWindows()
	}
	if cfg.OverdueRepeat <= 0 {
		cfg.OverdueRepeat = defaultOverdueRepeat
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		ledger:   ledger,
		settings: settings,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one sweep at now. It only returns an error when the task store is
// unreachable; per-item failures are logged and collected in the report.
func (uc *UseCase) Run(ctx context.Context, now time.Time) (Report, error) {
	log := logger.FromContext(ctx, uc.logger)

	if err := uc.tasks.Ping(ctx); err != nil {
		log.Error("sweep aborted: task store unreachable", zap.Error(err))
		return Report{}, err
	}

	var report Report

	// A task is handled only in the tightest window it falls into during one run.
	claimed := make(map[string]struct{})
	for _, window := range uc.cfg.Windows {
		tasks, err := uc.tasks.GetUpcomingDeadlines(ctx, now, now.Add(window.Lead))
		if err != nil {
			log.Error("query upcoming deadlines failed", zap.String("window", string(window.Type)), zap.Error(err))
			report.fail(err)
			continue
		}
		for i := range tasks {
			task := &tasks[i]
			if _, done := claimed[task.ID]; done {
				continue
			}
			claimed[task.ID] = struct{}{}
			uc.notifyRecipients(ctx, log, task, window.Type, now, &report, 0)
		}
	}

	uc.escalateOverdue(ctx, log, now, &report)

	log.Info("deadline sweep finished",
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("unreachable", report.Unreachable))
	return report, nil
}

func (uc *UseCase) escalateOverdue(ctx context.Context, log *zap.Logger, now time.Time, report *Report) {
	tasks, err := uc.tasks.GetOverdueTasks(ctx, now)
	if err != nil {
		log.Error("query overdue tasks failed", zap.Error(err))
		report.fail(err)
		return
	}

	for i := range tasks {
		uc.notifyRecipients(ctx, log, &tasks[i], domain.WindowOverdue, now, report, uc.cfg.OverdueRepeat)
	}
}

// notifyRecipients sends the window message to each recipient without a sent ledger entry.
// A non-zero repeatAfter lets a recipient be notified again once their own entry is older than it.
func (uc *UseCase) notifyRecipients(
	ctx context.Context,
	log *zap.Logger,
	task *domain.Task,
	window domain.WindowType,
	now time.Time,
	report *Report,
	repeatAfter time.Duration,
) {
	for _, recipient := range task.Recipients() {
		itemLog := log.With(
			zap.String("task_id", task.ID),
			zap.String("recipient", recipient),
			zap.String("window", string(window)),
		)

		entry, err := uc.ledger.Get(ctx, task.ID, recipient, window)
		if err != nil {
			itemLog.Warn("read reminder ledger failed", zap.Error(err))
			report.fail(err)
			continue
		}
		if entry.IsSent() && (repeatAfter <= 0 || now.Sub(*entry.SentAt) <= repeatAfter) {
			report.Skipped++
			continue
		}

		if !uc.notificationsEnabled(ctx, itemLog, recipient) {
			report.Skipped++
			continue
		}

		err = uc.notifier.Send(ctx, uc.buildNotification(task, recipient, window, now))
		switch {
		case err == nil:
			report.Sent++
		case domain.IsUnreachable(err):
			// Recorded as delivered so the window is not retried for a recipient that cannot be reached.
			itemLog.Warn("recipient unreachable, suppressing window", zap.Error(err))
			report.Unreachable++
		default:
			itemLog.Warn("reminder delivery failed", zap.Error(err))
			report.fail(err)
			continue
		}

		if err := uc.ledger.MarkSent(ctx, task.ID, recipient, window, now); err != nil {
			itemLog.Error("record reminder failed", zap.Error(err))
			report.fail(err)
		}
	}
}

func (uc *UseCase) notificationsEnabled(ctx context.Context, log *zap.Logger, userID string) bool {
	if uc.settings == nil {
		return true
	}
	settings, err := uc.settings.GetOrDefault(ctx, userID)
	if err != nil {
		log.Debug("settings lookup failed, notifying anyway", zap.Error(err))
		return true
	}
	return settings.NotificationsEnabled
}
