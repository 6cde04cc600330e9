package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"todo":        StatusTodo,
		"In Progress": StatusInProgress,
		"in-review":   StatusInReview,
		" DONE ":      StatusDone,
	}
	for raw, want := range cases {
		got, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdjacency(t *testing.T) {
	assert.True(t, StatusTodo.CanTransitionTo(StatusDone))
	assert.False(t, StatusTodo.CanTransitionTo(StatusInReview))
	assert.False(t, StatusInReview.CanTransitionTo(StatusTodo))
	assert.True(t, StatusDone.CanTransitionTo(StatusTodo))
	assert.False(t, StatusDone.CanTransitionTo(StatusDone))

	allowed := StatusInProgress.AllowedTransitions()
	allowed[0] = StatusDone
	assert.Equal(t, StatusTodo, StatusInProgress.AllowedTransitions()[0])
}

func TestRecipients(t *testing.T) {
	creator := "u1"
	other := "u2"
	blank := ""

	assert.Equal(t, []string{"u1"}, (&Task{CreatorID: "u1"}).Recipients())
	assert.Equal(t, []string{"u1"}, (&Task{CreatorID: "u1", AssigneeID: &creator}).Recipients())
	assert.Equal(t, []string{"u1", "u2"}, (&Task{CreatorID: "u1", AssigneeID: &other}).Recipients())
	assert.Equal(t, []string{"u1"}, (&Task{CreatorID: "u1", AssigneeID: &blank}).Recipients())
	assert.Nil(t, (*Task)(nil).Recipients())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&Task{Status: StatusTodo, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusDone, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo}).IsOverdue(now))
}

func TestParseWindows(t *testing.T) {
	windows, err := ParseWindows("24h, 2h,6h")
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, WindowType("2h"), windows[0].Type)
	assert.Equal(t, 24*time.Hour, windows[2].Lead)

	for _, raw := range []string{"", "soon", "-1h", "2h,2h"} {
		_, err := ParseWindows(raw)
		assert.Error(t, err, raw)
	}
}

func TestErrorClassification(t *testing.T) {
	err := UnreachableError("u1", assert.AnError)
	assert.True(t, IsUnreachable(err))
	assert.True(t, IsDomainError(err, ErrCodeRecipientUnreachable))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsUnreachable(NotificationError("send", assert.AnError)))
}
