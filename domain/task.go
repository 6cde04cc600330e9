package domain

import (
	"strings"
	"time"
)

// Status is the workflow position of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
)

// Statuses lists every workflow status in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusInReview, StatusDone}

var transitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusDone},
	StatusInProgress: {StatusTodo, StatusInReview, StatusDone},
	StatusInReview:   {StatusInProgress, StatusDone},
	StatusDone:       {StatusTodo, StatusInProgress},
}

// IsValid reports whether s is one of the four workflow statuses.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the adjacency table allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s.
func (s Status) AllowedTransitions() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// ParseStatus normalizes user or API input ("In Progress", "in-progress") into a Status.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := Status(normalized)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Task mirrors a card on the external board together with its local workflow state.
// ID is the board card id.
type Task struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id,omitempty"`
	ChatID      string     `json:"chat_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	Status      Status     `json:"status"`
	CreatorID   string     `json:"creator_id"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// IsOverdue reports whether the task is open and its due date has passed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t != nil && !t.IsCompleted() && t.DueDate != nil && t.DueDate.Before(now)
}

// Recipients returns the creator followed by the assignee, without duplicates or blanks.
func (t *Task) Recipients() []string {
	if t == nil {
		return nil
	}
	recipients := make([]string, 0, 2)
	if t.CreatorID != "" {
		recipients = append(recipients, t.CreatorID)
	}
	if t.AssigneeID != nil && *t.AssigneeID != "" && *t.AssigneeID != t.CreatorID {
		recipients = append(recipients, *t.AssigneeID)
	}
	return recipients
}

// InvolvesUser reports whether userID created or is assigned to the task.
func (t *Task) InvolvesUser(userID string) bool {
	if t == nil || userID == "" {
		return false
	}
	return t.CreatorID == userID || (t.AssigneeID != nil && *t.AssigneeID == userID)
}

// StatusChange records one persisted transition.
type StatusChange struct {
	TaskID    string    `json:"task_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskStats is the end-of-day aggregate for one user.
type TaskStats struct {
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
}
