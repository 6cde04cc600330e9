package transition

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

var testLists = []domain.BoardList{
	{ID: "l-todo", Name: "To Do", Position: 1},
	{ID: "l-doing", Name: "In Progress", Position: 2},
	{ID: "l-review", Name: "Review", Position: 3},
	{ID: "l-done", Name: "Done", Position: 4},
}

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newEngine(store *mocks.TaskStore, board *mocks.Board, outbox *mocks.Outbox) *Engine {
	if board.Lists == nil && board.GetBoardListsFn == nil {
		board.Lists = testLists
	}
	return New(store, board, mocks.NewListCache(), outbox, Config{DefaultBoardID: "b1"}, nil,
		WithClock(func() time.Time { return fixedNow }))
}

func taskWithStatus(status domain.Status) domain.Task {
	return domain.Task{ID: "card-1", Title: "Ship", Status: status, CreatorID: "creator"}
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	for _, status := range domain.Statuses {
		t.Run(string(status), func(t *testing.T) {
			store := mocks.NewTaskStore(taskWithStatus(status))
			board := &mocks.Board{}
			engine := newEngine(store, board, &mocks.Outbox{})

			result, err := engine.Transition(context.Background(), "card-1", status, "actor")
			require.NoError(t, err)
			assert.False(t, result.Changed)
			assert.Equal(t, status, result.Task.Status)
			assert.Zero(t, board.ListCalls)
			assert.Empty(t, board.Moves())
			assert.Zero(t, store.UpdateStatusCalls)
		})
	}
}

func TestTransitionRespectsAdjacency(t *testing.T) {
	allowed := map[domain.Status][]domain.Status{
		domain.StatusTodo:       {domain.StatusInProgress, domain.StatusDone},
		domain.StatusInProgress: {domain.StatusTodo, domain.StatusInReview, domain.StatusDone},
		domain.StatusInReview:   {domain.StatusInProgress, domain.StatusDone},
		domain.StatusDone:       {domain.StatusTodo, domain.StatusInProgress},
	}

	for _, from := range domain.Statuses {
		for _, to := range domain.Statuses {
			if from == to {
				continue
			}
			from, to := from, to
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				store := mocks.NewTaskStore(taskWithStatus(from))
				board := &mocks.Board{}
				engine := newEngine(store, board, &mocks.Outbox{})

				result, err := engine.Transition(context.Background(), "card-1", to, "actor")
				stored, _ := store.Task("card-1")

				if contains(allowed[from], to) {
					require.NoError(t, err)
					assert.True(t, result.Changed)
					assert.Equal(t, from, result.Previous)
					assert.Equal(t, to, stored.Status)
					assert.Len(t, board.Moves(), 1)
					return
				}

				require.Error(t, err)
				assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
				assert.Equal(t, from, stored.Status)
				assert.Empty(t, board.Moves())
			})
		}
	}
}

func TestTransitionMovesCardToResolvedList(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusInProgress))
	board := &mocks.Board{}
	engine := newEngine(store, board, &mocks.Outbox{})

	result, err := engine.Transition(context.Background(), "card-1", domain.StatusDone, "actor")
	require.NoError(t, err)

	require.Len(t, board.Moves(), 1)
	assert.Equal(t, mocks.MoveCall{CardID: "card-1", ListID: "l-done"}, board.Moves()[0])
	require.NotNil(t, result.Task.CompletedAt)
	assert.Equal(t, fixedNow, *result.Task.CompletedAt)

	history := store.Transitions()
	require.Len(t, history, 1)
	assert.Equal(t, "actor", history[0].ActorID)

	comments := board.Comments()
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0].Text, "from in_progress to done")
}

func TestTransitionUnknownTask(t *testing.T) {
	engine := newEngine(mocks.NewTaskStore(), &mocks.Board{}, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "missing", domain.StatusDone, "actor")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	engine := newEngine(mocks.NewTaskStore(taskWithStatus(domain.StatusTodo)), &mocks.Board{}, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "card-1", domain.Status("archived"), "actor")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestTransitionBoardFailureLeavesTaskUntouched(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{
		UpdateCardFn: func(context.Context, string, string) error {
			return domain.BoardError("move card", errors.New("503"))
		},
	}
	engine := newEngine(store, board, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "card-1", domain.StatusInProgress, "actor")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeBoard))

	stored, _ := store.Task("card-1")
	assert.Equal(t, domain.StatusTodo, stored.Status)
	assert.Zero(t, store.UpdateStatusCalls)
	assert.Empty(t, board.Comments())
}

func TestTransitionFailsWithoutLists(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{
		GetBoardListsFn: func(context.Context, string) ([]domain.BoardList, error) { return nil, nil },
	}
	engine := newEngine(store, board, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "card-1", domain.StatusDone, "actor")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeBoard))
	assert.Empty(t, board.Moves())
}

func TestTransitionRefusesReviewOnThreeListBoard(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusInProgress))
	board := &mocks.Board{Lists: []domain.BoardList{
		{ID: "l1", Name: "To Do", Position: 1},
		{ID: "l2", Name: "Doing", Position: 2},
		{ID: "l3", Name: "Done", Position: 3},
	}}
	engine := newEngine(store, board, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "card-1", domain.StatusInReview, "actor")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeBoard))
	assert.Empty(t, board.Moves())

	stored, _ := store.Task("card-1")
	assert.Equal(t, domain.StatusInProgress, stored.Status)
}

func TestTransitionCommentFailureGoesToOutbox(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{
		AddCommentFn: func(context.Context, string, string) error { return errors.New("timeout") },
	}
	outbox := &mocks.Outbox{}
	engine := newEngine(store, board, outbox)

	result, err := engine.Transition(context.Background(), "card-1", domain.StatusDone, "actor")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	require.Len(t, outbox.Comments, 1)
	assert.Equal(t, "card-1", outbox.Comments[0].CardID)

	outbox.Err = errors.New("disk full")
	_, err = engine.Transition(context.Background(), "card-1", domain.StatusTodo, "actor")
	assert.NoError(t, err)
}

func TestTransitionUsesCachedLists(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{}
	engine := newEngine(store, board, &mocks.Outbox{})

	_, err := engine.Transition(context.Background(), "card-1", domain.StatusInProgress, "actor")
	require.NoError(t, err)
	_, err = engine.Transition(context.Background(), "card-1", domain.StatusInReview, "actor")
	require.NoError(t, err)

	assert.Equal(t, 1, board.ListCalls)
	assert.Len(t, board.Moves(), 2)
}

func TestAssignAutoTransitionsTodo(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{}
	engine := newEngine(store, board, &mocks.Outbox{})

	result, err := engine.Assign(context.Background(), "card-1", "user-a", "lead")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, domain.StatusTodo, result.Previous)
	assert.Equal(t, domain.StatusInProgress, result.Task.Status)
	require.NotNil(t, result.Task.AssigneeID)
	assert.Equal(t, "user-a", *result.Task.AssigneeID)

	history := store.Transitions()
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusChange{
		TaskID: "card-1", From: domain.StatusTodo, To: domain.StatusInProgress, ActorID: "lead", CreatedAt: fixedNow,
	}, history[0])
	assert.Equal(t, []mocks.MoveCall{{CardID: "card-1", ListID: "l-doing"}}, board.Moves())
}

func TestAssignKeepsStatusOutsideTodo(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusInReview))
	board := &mocks.Board{}
	engine := newEngine(store, board, &mocks.Outbox{})

	result, err := engine.Assign(context.Background(), "card-1", "user-a", "lead")
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, domain.StatusInReview, result.Task.Status)
	assert.Empty(t, board.Moves())
}

func TestAssignKeepsAssigneeWhenBoardFails(t *testing.T) {
	store := mocks.NewTaskStore(taskWithStatus(domain.StatusTodo))
	board := &mocks.Board{
		UpdateCardFn: func(context.Context, string, string) error { return errors.New("boom") },
	}
	engine := newEngine(store, board, &mocks.Outbox{})

	result, err := engine.Assign(context.Background(), "card-1", "user-a", "lead")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.StatusTodo, result.Task.Status)

	stored, _ := store.Task("card-1")
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, "user-a", *stored.AssigneeID)
	assert.Equal(t, domain.StatusTodo, stored.Status)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "This status change is not allowed.",
		UserMessage(domain.NewInvalidTransition(domain.StatusTodo, domain.StatusInReview)))
	assert.Equal(t, "Task not found.", UserMessage(domain.ErrTaskNotFound))
	assert.Contains(t, UserMessage(domain.BoardError("x", nil)), "System error")
	assert.Contains(t, UserMessage(errors.New("unknown")), "System error")
}

func contains(list []domain.Status, s domain.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
