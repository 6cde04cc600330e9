package digest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

// Kind selects the morning or evening digest.
type Kind string

const (
	Morning Kind = "morning"
	Evening Kind = "evening"
)

const defaultItemCap = 5

type Config struct {
	// ItemCap bounds the number of tasks listed per section.
	ItemCap int
	// MorningHour is the digest hour a user must have configured to get the morning digest.
	MorningHour int
	Location    *time.Location
}

// Report summarizes one digest run.
type Report struct {
	Sent    int
	Skipped int
	Failed  int
	Err     error
}

func (r *Report) fail(err error) {
	r.Failed++
	r.Err = multierr.Append(r.Err, err)
}

// UseCase builds per-user daily summaries. It only reads tasks and never touches the reminder ledger.
type UseCase struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	notifier usecase.Notifier
	cfg      Config
	logger   *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	notifier usecase.Notifier,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if cfg.ItemCap <= 0 {
		cfg.ItemCap = defaultItemCap
	}
	if cfg.MorningHour < 0 || cfg.MorningHour > 23 {
		cfg.MorningHour = domain.DefaultDigestHour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		users:    users,
		settings: settings,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run sends the digest of the given kind to every eligible active user.
// Only a failure to list users aborts the run; per-user failures end up in the report.
func (uc *UseCase) Run(ctx context.Context, kind Kind, now time.Time) (Report, error) {
	if kind != Morning && kind != Evening {
		return Report{}, domain.NewError(domain.ErrCodeInvalid, "unknown digest kind "+string(kind))
	}
	log := logger.FromContext(ctx, uc.logger).With(zap.String("digest", string(kind)))

	users, err := uc.users.ListActive(ctx)
	if err != nil {
		log.Error("digest aborted: cannot list users", zap.Error(err))
		return Report{}, err
	}

	now = now.In(uc.cfg.Location)
	var report Report
	for _, user := range users {
		userLog := log.With(zap.String("user_id", user.ID))

		settings, err := uc.settings.GetOrDefault(ctx, user.ID)
		if err != nil {
			userLog.Warn("load digest settings failed", zap.Error(err))
			report.fail(err)
			continue
		}
		if !settings.DigestEnabled || (kind == Morning && settings.DigestHour != uc.cfg.MorningHour) {
			report.Skipped++
			continue
		}

		var text string
		switch kind {
		case Morning:
			text, err = uc.morning(ctx, user.ID, now)
		case Evening:
			text, err = uc.evening(ctx, user.ID, now)
		}
		if err != nil {
			userLog.Warn("build digest failed", zap.Error(err))
			report.fail(err)
			continue
		}
		if text == "" {
			report.Skipped++
			continue
		}

		if err := uc.notifier.Send(ctx, domain.Notification{RecipientID: user.ID, Text: text}); err != nil {
			userLog.Warn("digest delivery failed", zap.Bool("unreachable", domain.IsUnreachable(err)), zap.Error(err))
			report.fail(err)
			continue
		}
		report.Sent++
	}

	log.Info("digest finished",
		zap.Int("sent", report.Sent),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed))
	return report, nil
}

// morning returns an empty text when the user has nothing due or overdue.
func (uc *UseCase) morning(ctx context.Context, userID string, now time.Time) (string, error) {
	_, dayEnd := dayBounds(now)

	dueToday, err := uc.tasks.GetDueBetween(ctx, userID, now, dayEnd)
	if err != nil {
		return "", err
	}
	overdue, err := uc.tasks.GetOverdueForUser(ctx, userID, now)
	if err != nil {
		return "", err
	}

	if len(dueToday) == 0 && len(overdue) == 0 {
		return "", nil
	}

	var b builder
	b.line("Good morning! Here is your day.")
	b.section(fmt.Sprintf("Due today (%d):", len(dueToday)), dueToday, uc.cfg.ItemCap, func(t domain.Task) string {
		return fmt.Sprintf("%s, %s", t.Title, t.DueDate.In(now.Location()).Format("15:04"))
	})
	if len(overdue) > uc.cfg.ItemCap {
		b.blank()
		b.line(fmt.Sprintf("Overdue: %d tasks need attention.", len(overdue)))
	} else {
		b.section(fmt.Sprintf("Overdue (%d):", len(overdue)), overdue, uc.cfg.ItemCap, func(t domain.Task) string {
			return fmt.Sprintf("%s, was due %s", t.Title, t.DueDate.In(now.Location()).Format("02 Jan"))
		})
	}
	return b.String(), nil
}

func (uc *UseCase) evening(ctx context.Context, userID string, now time.Time) (string, error) {
	dayStart, dayEnd := dayBounds(now)

	completed, err := uc.tasks.GetCompletedBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	dueTomorrow, err := uc.tasks.GetDueBetween(ctx, userID, dayEnd, dayEnd.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}
	stats, err := uc.tasks.Stats(ctx, userID, dayStart, now)
	if err != nil {
		return "", err
	}

	var b builder
	b.line("End of day summary.")
	b.section(fmt.Sprintf("Completed today (%d):", len(completed)), completed, uc.cfg.ItemCap, func(t domain.Task) string {
		return t.Title
	})
	b.section(fmt.Sprintf("Due tomorrow (%d):", len(dueTomorrow)), dueTomorrow, uc.cfg.ItemCap, func(t domain.Task) string {
		return fmt.Sprintf("%s, %s", t.Title, t.DueDate.In(now.Location()).Format("15:04"))
	})
	b.blank()
	b.line(fmt.Sprintf("Stats: %d completed, %d in progress, %d overdue.", stats.Completed, stats.InProgress, stats.Overdue))
	return b.String(), nil
}

// dayBounds returns local midnight of now's day and of the next day.
func dayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}
