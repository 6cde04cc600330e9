package mocks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

func TestTaskStorePagesUserTasks(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewTaskStore()
	for i := 0; i < 130; i++ {
		due := base.Add(time.Duration(i) * time.Hour)
		store.Put(domain.Task{ID: fmt.Sprintf("t%03d", i), CreatorID: "u1", Status: domain.StatusDone, DueDate: &due})
	}
	store.Put(domain.Task{ID: "undated", CreatorID: "u1", Status: domain.StatusTodo})

	page, err := store.GetUserTasks(context.Background(), repository.TaskFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, page, 100)
	assert.Equal(t, "t000", page[0].ID)

	rest, err := store.GetUserTasks(context.Background(), repository.TaskFilter{UserID: "u1", Offset: 100, Limit: 50})
	require.NoError(t, err)
	require.Len(t, rest, 31)
	assert.Equal(t, "undated", rest[30].ID)

	overdue, err := store.GetOverdueForUser(context.Background(), "u1", base.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, overdue)
}
