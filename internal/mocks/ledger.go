package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type ledgerKey struct {
	taskID string
	userID string
	window domain.WindowType
}

// Ledger is an in-memory repository.ReminderRepository.
type Ledger struct {
	mu      sync.Mutex
	entries map[ledgerKey]time.Time

	MarkSentErr error
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[ledgerKey]time.Time)}
}

// Len returns the number of stored entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// SentAt returns the stored timestamp of an entry.
func (l *Ledger) SentAt(taskID, userID string, window domain.WindowType) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.entries[ledgerKey{taskID, userID, window}]
	return at, ok
}

func (l *Ledger) Get(_ context.Context, taskID, userID string, window domain.WindowType) (*domain.ReminderEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.entries[ledgerKey{taskID, userID, window}]
	if !ok {
		return nil, nil
	}
	return &domain.ReminderEntry{TaskID: taskID, UserID: userID, Type: window, SentAt: &at}, nil
}

func (l *Ledger) MarkSent(_ context.Context, taskID, userID string, window domain.WindowType, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.MarkSentErr != nil {
		return l.MarkSentErr
	}
	l.entries[ledgerKey{taskID, userID, window}] = at
	return nil
}

func (l *Ledger) DeleteSentBefore(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed int64
	for key, at := range l.entries {
		if at.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed, nil
}

var _ repository.ReminderRepository = (*Ledger)(nil)
