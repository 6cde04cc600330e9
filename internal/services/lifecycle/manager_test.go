package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"postgres", "redis", "scheduler", "http_server"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "scheduler", "redis", "postgres"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 4)
}

func TestShutdownCollectsErrors(t *testing.T) {
	m := New(time.Second, nil)
	ran := false
	m.Register("outbox", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("redis", func(context.Context) error { return errors.New("redis: client is closed") })

	err := m.Shutdown(context.Background())
	assert.EqualError(t, err, "redis: client is closed")
	assert.True(t, ran)
}

func TestListenCancelsWithParent(t *testing.T) {
	m := New(time.Second, nil)
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := m.Listen(parent)
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
