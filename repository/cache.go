package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskpulse/domain"
)

// JobLock guards a named job across process replicas.
type JobLock interface {
	// Acquire returns a release func when the lock was taken, or ok=false when another holder owns it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// BoardListCache caches board columns; a miss returns (nil, nil).
type BoardListCache interface {
	Get(ctx context.Context, boardID string) ([]domain.BoardList, error)
	Set(ctx context.Context, boardID string, lists []domain.BoardList) error
	Invalidate(ctx context.Context, boardID string) error
}
