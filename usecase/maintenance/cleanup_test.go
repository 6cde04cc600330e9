package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/internal/mocks"
)

type purgerFunc func(ctx context.Context, cutoff time.Time) (int, error)

func (f purgerFunc) Purge(ctx context.Context, cutoff time.Time) (int, error) { return f(ctx, cutoff) }

func TestCleanupPurgesOldEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC)
	ledger := mocks.NewLedger()
	require.NoError(t, ledger.MarkSent(ctx, "t1", "A", "24h", now.Add(-31*24*time.Hour)))
	require.NoError(t, ledger.MarkSent(ctx, "t1", "A", domain.WindowOverdue, now.Add(-29*24*time.Hour)))

	var cutoff time.Time
	outbox := purgerFunc(func(_ context.Context, c time.Time) (int, error) {
		cutoff = c
		return 4, nil
	})

	result, err := New(ledger, outbox, Config{}, nil).Run(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Reminders)
	assert.Equal(t, 4, result.Comments)
	assert.Equal(t, now.Add(-72*time.Hour), cutoff)
	assert.Equal(t, 1, ledger.Len())
}

func TestCleanupKeepsGoingAfterOutboxFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	ledger := mocks.NewLedger()
	require.NoError(t, ledger.MarkSent(ctx, "t1", "A", "2h", now.Add(-60*24*time.Hour)))

	outbox := purgerFunc(func(context.Context, time.Time) (int, error) { return 0, errors.New("bolt closed") })

	result, err := New(ledger, outbox, Config{ReminderRetention: 24 * time.Hour}, nil).Run(ctx, now)
	assert.Error(t, err)
	assert.EqualValues(t, 1, result.Reminders)
	assert.Zero(t, ledger.Len())
}
