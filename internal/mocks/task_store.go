package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// TaskStore is an in-memory repository.TaskRepository.
type TaskStore struct {
	mu          sync.Mutex
	tasks       map[string]domain.Task
	transitions []domain.StatusChange

	PingErr         error
	UpdateStatusErr error
	QueryErr        error

	UpdateStatusCalls int
}

func NewTaskStore(tasks ...domain.Task) *TaskStore {
	s := &TaskStore{tasks: make(map[string]domain.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

// Put inserts or replaces a task.
func (s *TaskStore) Put(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

// Task returns a copy of the stored task.
func (s *TaskStore) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Transitions returns the recorded history.
func (s *TaskStore) Transitions() []domain.StatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StatusChange(nil), s.transitions...)
}

func (s *TaskStore) GetByExternalID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (s *TaskStore) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	s.tasks[task.ID] = *task
	return task, nil
}

func (s *TaskStore) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	current.Title = task.Title
	current.Description = task.Description
	current.Priority = task.Priority
	current.Category = task.Category
	current.DueDate = task.DueDate
	s.tasks[task.ID] = current
	return nil
}

func (s *TaskStore) UpdateStatus(_ context.Context, update repository.StatusUpdate) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateStatusCalls++
	if s.UpdateStatusErr != nil {
		return nil, s.UpdateStatusErr
	}
	t, ok := s.tasks[update.TaskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.Status != update.From {
		return nil, domain.NewError(domain.ErrCodeConflict, "task status changed concurrently")
	}
	t.Status = update.To
	t.UpdatedAt = update.At
	if update.To == domain.StatusDone {
		at := update.At
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	s.tasks[t.ID] = t
	s.transitions = append(s.transitions, domain.StatusChange{
		TaskID:    t.ID,
		From:      update.From,
		To:        update.To,
		ActorID:   update.ActorID,
		CreatedAt: update.At,
	})
	return &t, nil
}

func (s *TaskStore) SetAssignee(_ context.Context, id string, assigneeID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	assignee := assigneeID
	t.AssigneeID = &assignee
	s.tasks[id] = t
	return &t, nil
}

func (s *TaskStore) GetUpcomingDeadlines(_ context.Context, from, to time.Time) ([]domain.Task, error) {
	return s.filter(func(t domain.Task) bool {
		return !t.IsCompleted() && t.DueDate != nil && !t.DueDate.Before(from) && !t.DueDate.After(to)
	})
}

func (s *TaskStore) GetOverdueTasks(_ context.Context, now time.Time) ([]domain.Task, error) {
	return s.filter(func(t domain.Task) bool { return t.IsOverdue(now) })
}

func (s *TaskStore) GetOverdueForUser(_ context.Context, userID string, now time.Time) ([]domain.Task, error) {
	return s.filter(func(t domain.Task) bool { return t.InvolvesUser(userID) && t.IsOverdue(now) })
}

// GetUserTasks pages like the Postgres store: at most 100 rows, undated tasks last.
func (s *TaskStore) GetUserTasks(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.filter(func(t domain.Task) bool {
		return t.InvolvesUser(filter.UserID) && (filter.Status == "" || t.Status == filter.Status)
	})
	if err != nil {
		return nil, err
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if filter.Offset >= len(tasks) {
		return nil, nil
	}
	tasks = tasks[filter.Offset:]
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (s *TaskStore) GetCompletedBetween(_ context.Context, userID string, from, to time.Time) ([]domain.Task, error) {
	return s.filter(func(t domain.Task) bool {
		return t.InvolvesUser(userID) && t.IsCompleted() && t.CompletedAt != nil &&
			!t.CompletedAt.Before(from) && t.CompletedAt.Before(to)
	})
}

func (s *TaskStore) GetDueBetween(_ context.Context, userID string, from, to time.Time) ([]domain.Task, error) {
	return s.filter(func(t domain.Task) bool {
		return t.InvolvesUser(userID) && !t.IsCompleted() && t.DueDate != nil &&
			!t.DueDate.Before(from) && t.DueDate.Before(to)
	})
}

func (s *TaskStore) Stats(_ context.Context, userID string, dayStart, now time.Time) (domain.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return domain.TaskStats{}, s.QueryErr
	}
	var stats domain.TaskStats
	for _, t := range s.tasks {
		if !t.InvolvesUser(userID) {
			continue
		}
		switch {
		case t.IsCompleted() && t.CompletedAt != nil && !t.CompletedAt.Before(dayStart) && !t.CompletedAt.After(now):
			stats.Completed++
		case t.Status == domain.StatusInProgress:
			stats.InProgress++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
	}
	return stats, nil
}

func (s *TaskStore) Ping(context.Context) error {
	return s.PingErr
}

func (s *TaskStore) filter(keep func(domain.Task) bool) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	var out []domain.Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil || b == nil:
			return b == nil
		case a.Equal(*b):
			return out[i].ID < out[j].ID
		}
		return a.Before(*b)
	})
	return out, nil
}

// ListByTask serves the recorded history as a repository.TransitionRepository.
func (s *TaskStore) ListByTask(_ context.Context, taskID string) ([]domain.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QueryErr != nil {
		return nil, s.QueryErr
	}
	var out []domain.StatusChange
	for _, change := range s.transitions {
		if change.TaskID == taskID {
			out = append(out, change)
		}
	}
	return out, nil
}

var (
	_ repository.TaskRepository       = (*TaskStore)(nil)
	_ repository.TransitionRepository = (*TaskStore)(nil)
)
