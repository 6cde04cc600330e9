package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// TaskFilter narrows GetUserTasks results.
type TaskFilter struct {
	UserID string
	Status domain.Status
	Limit  int
	Offset int
}

// StatusUpdate is applied atomically with its history row.
type StatusUpdate struct {
	TaskID  string
	From    domain.Status
	To      domain.Status
	ActorID string
	At      time.Time
}

type TaskRepository interface {
	GetByExternalID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	// UpdateStatus persists a transition and its history row in one transaction.
	// It fails with a CONFLICT error if the stored status no longer equals From.
	UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.Task, error)
	SetAssignee(ctx context.Context, id string, assigneeID string) (*domain.Task, error)
	// GetUpcomingDeadlines returns open tasks due within [from, to].
	GetUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Task, error)
	// GetOverdueTasks returns open tasks due before now.
	GetOverdueTasks(ctx context.Context, now time.Time) ([]domain.Task, error)
	// GetOverdueForUser returns every open task of userID due before now, without paging.
	GetOverdueForUser(ctx context.Context, userID string, now time.Time) ([]domain.Task, error)
	GetUserTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// GetCompletedBetween returns tasks of userID that entered done within [from, to).
	GetCompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Task, error)
	// GetDueBetween returns open tasks of userID due within [from, to).
	GetDueBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Task, error)
	Stats(ctx context.Context, userID string, dayStart, now time.Time) (domain.TaskStats, error)
	Ping(ctx context.Context) error
}
