package usecase

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

// BoardClient is the external kanban board holding the canonical cards.
// Implementations return domain BoardError values.
type BoardClient interface {
	GetBoardLists(ctx context.Context, boardID string) ([]domain.BoardList, error)
	UpdateCard(ctx context.Context, cardID, listID string) error
	AddComment(ctx context.Context, cardID, text string) error
}

// Notifier delivers messages to end users. An unreachable recipient is reported
// with domain.UnreachableError so callers can tell it apart from transient failures.
type Notifier interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// ActivityOutbox keeps board comments that could not be delivered right away.
type ActivityOutbox interface {
	EnqueueComment(ctx context.Context, taskID, text string) error
}
