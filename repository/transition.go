package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type TransitionRepository interface {
	ListByTask(ctx context.Context, taskID string) ([]domain.StatusChange, error)
}
