package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskpulse/domain"
)

func TestResolveListByName(t *testing.T) {
	lists := []domain.BoardList{
		{ID: "done", Name: "Completed ✅", Position: 4},
		{ID: "backlog", Name: "Backlog", Position: 1},
		{ID: "doing", Name: "DOING", Position: 2},
		{ID: "qa", Name: "QA / Testing", Position: 3},
	}

	cases := map[domain.Status]string{
		domain.StatusTodo:       "backlog",
		domain.StatusInProgress: "doing",
		domain.StatusInReview:   "qa",
		domain.StatusDone:       "done",
	}
	for status, want := range cases {
		got, ok := ResolveList(lists, status)
		assert.True(t, ok, status)
		assert.Equal(t, want, got, status)
	}
}

func TestResolveListPrefersHigherRankedCandidate(t *testing.T) {
	lists := []domain.BoardList{
		{ID: "open", Name: "Open questions", Position: 1},
		{ID: "todo", Name: "To do", Position: 2},
	}

	got, ok := ResolveList(lists, domain.StatusTodo)
	assert.True(t, ok)
	assert.Equal(t, "todo", got)
}

func TestResolveListPositionalFallback(t *testing.T) {
	lists := []domain.BoardList{
		{ID: "c", Name: "Gamma", Position: 30},
		{ID: "a", Name: "Alpha", Position: 10},
		{ID: "b", Name: "Beta", Position: 20},
		{ID: "z", Name: "Zeta", Position: 40},
	}

	cases := map[domain.Status]string{
		domain.StatusTodo:       "a",
		domain.StatusInProgress: "b",
		domain.StatusInReview:   "c",
		domain.StatusDone:       "z",
	}
	for status, want := range cases {
		got, ok := ResolveList(lists, status)
		assert.True(t, ok, status)
		assert.Equal(t, want, got, status)
	}
}

func TestResolveListNoMatch(t *testing.T) {
	_, ok := ResolveList(nil, domain.StatusDone)
	assert.False(t, ok)

	_, ok = ResolveList([]domain.BoardList{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}}, domain.StatusInReview)
	assert.False(t, ok)

	_, ok = ResolveList([]domain.BoardList{{ID: "a", Name: "Alpha"}}, domain.Status("archived"))
	assert.False(t, ok)
}

func TestResolveListFallbackAvoidsDoneList(t *testing.T) {
	lists := []domain.BoardList{
		{ID: "l1", Name: "To Do", Position: 1},
		{ID: "l2", Name: "Doing", Position: 2},
		{ID: "l3", Name: "Done", Position: 3},
	}

	_, ok := ResolveList(lists, domain.StatusInReview)
	assert.False(t, ok)

	got, ok := ResolveList(lists, domain.StatusDone)
	assert.True(t, ok)
	assert.Equal(t, "l3", got)

	got, ok = ResolveList(lists, domain.StatusInProgress)
	assert.True(t, ok)
	assert.Equal(t, "l2", got)

	single := []domain.BoardList{{ID: "inbox", Name: "Inbox", Position: 1}}
	_, ok = ResolveList(single, domain.StatusTodo)
	assert.False(t, ok)
}
