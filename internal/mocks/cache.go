package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

// ListCache is an in-memory repository.BoardListCache.
type ListCache struct {
	mu    sync.Mutex
	lists map[string][]domain.BoardList

	Invalidations int
}

func NewListCache() *ListCache {
	return &ListCache{lists: make(map[string][]domain.BoardList)}
}

func (c *ListCache) Get(_ context.Context, boardID string) ([]domain.BoardList, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists[boardID], nil
}

func (c *ListCache) Set(_ context.Context, boardID string, lists []domain.BoardList) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[boardID] = append([]domain.BoardList(nil), lists...)
	return nil
}

func (c *ListCache) Invalidate(_ context.Context, boardID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, boardID)
	c.Invalidations++
	return nil
}

// JobLock is an in-memory repository.JobLock.
type JobLock struct {
	mu   sync.Mutex
	held map[string]bool

	Err error
}

func NewJobLock() *JobLock {
	return &JobLock{held: make(map[string]bool)}
}

func (l *JobLock) Acquire(_ context.Context, name string, _ time.Duration) (func(context.Context) error, bool, error) {
	if l.Err != nil {
		return nil, false, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
		return nil
	}, true, nil
}

// Hold marks name as owned by another replica.
func (l *JobLock) Hold(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[name] = true
}

var (
	_ repository.BoardListCache = (*ListCache)(nil)
	_ repository.JobLock        = (*JobLock)(nil)
)
