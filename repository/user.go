package repository

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListActive(ctx context.Context) ([]domain.User, error)
}
