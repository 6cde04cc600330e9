package transition

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/pkg/logger"
	"github.com/fastygo/taskpulse/repository"
	"github.com/fastygo/taskpulse/usecase"
)

// Result is the outcome of a transition or assignment.
type Result struct {
	Task     *domain.Task  `json:"task"`
	Previous domain.Status `json:"previous_status"`
	Changed  bool          `json:"changed"`
}

type Config struct {
	// DefaultBoardID is used for tasks that do not carry their own board id.
	DefaultBoardID string
}

// Engine validates and executes task status changes against the board and the task store.
type Engine struct {
	tasks  repository.TaskRepository
	board  usecase.BoardClient
	lists  repository.BoardListCache
	outbox usecase.ActivityOutbox
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Engine. lists and outbox may be nil.
func New(
	tasks repository.TaskRepository,
	board usecase.BoardClient,
	lists repository.BoardListCache,
	outbox usecase.ActivityOutbox,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		tasks:  tasks,
		board:  board,
		lists:  lists,
		outbox: outbox,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transition moves a task to target on behalf of actorID.
// Asking for the current status is a no-op that never reaches the board.
// The local status is only written after the board accepted the move.
func (e *Engine) Transition(ctx context.Context, taskID string, target domain.Status, actorID string) (*Result, error) {
	if !target.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	task, err := e.tasks.GetByExternalID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	previous := task.Status
	if previous == target {
		return &Result{Task: task, Previous: previous}, nil
	}
	if !previous.CanTransitionTo(target) {
		return nil, domain.NewInvalidTransition(previous, target)
	}

	log := logger.FromContext(ctx, e.logger).With(
		zap.String("task_id", task.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor", actorID),
	)

	boardID := task.BoardID
	if boardID == "" {
		boardID = e.cfg.DefaultBoardID
	}
	if err := e.moveCard(ctx, boardID, task.ID, target); err != nil {
		log.Warn("board rejected status change", zap.Error(err))
		return nil, err
	}

	at := e.now()
	updated, err := e.tasks.UpdateStatus(ctx, repository.StatusUpdate{
		TaskID:  task.ID,
		From:    previous,
		To:      target,
		ActorID: actorID,
		At:      at,
	})
	if err != nil {
		log.Error("card moved but status not persisted", zap.Error(err))
		return nil, err
	}

	log.Info("task status changed")
	e.recordActivity(ctx, log, updated.ID, activityText(previous, target, actorID, at))

	return &Result{Task: updated, Previous: previous, Changed: true}, nil
}

// Assign sets the assignee of a task. A task still in todo is moved to in_progress
// through Transition on behalf of actorID.
// When that move fails the assignment is kept and returned together with the error.
func (e *Engine) Assign(ctx context.Context, taskID, assigneeID, actorID string) (*Result, error) {
	if taskID == "" || assigneeID == "" {
		return nil, domain.ErrInvalidPayload
	}

	task, err := e.tasks.SetAssignee(ctx, taskID, assigneeID)
	if err != nil {
		return nil, err
	}

	result := &Result{Task: task, Previous: task.Status}
	if task.Status != domain.StatusTodo {
		return result, nil
	}

	moved, err := e.Transition(ctx, taskID, domain.StatusInProgress, actorID)
	if err != nil {
		logger.FromContext(ctx, e.logger).Warn("auto transition after assignment failed",
			zap.String("task_id", taskID),
			zap.String("assignee", assigneeID),
			zap.Error(err))
		return result, err
	}
	return moved, nil
}

func (e *Engine) moveCard(ctx context.Context, boardID, cardID string, target domain.Status) error {
	lists, err := e.boardLists(ctx, boardID)
	if err != nil {
		return err
	}

	listID, ok := ResolveList(lists, target)
	if !ok {
		return domain.ErrBoardListNotFound
	}

	if err := e.board.UpdateCard(ctx, cardID, listID); err != nil {
		e.invalidateLists(ctx, boardID)
		if domain.IsDomainError(err, domain.ErrCodeBoard) {
			return err
		}
		return domain.BoardError("move card", err)
	}
	return nil
}

func (e *Engine) boardLists(ctx context.Context, boardID string) ([]domain.BoardList, error) {
	if e.lists != nil {
		cached, err := e.lists.Get(ctx, boardID)
		if err != nil {
			e.logger.Debug("board list cache read failed", zap.String("board_id", boardID), zap.Error(err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	lists, err := e.board.GetBoardLists(ctx, boardID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeBoard) {
			return nil, err
		}
		return nil, domain.BoardError("get board lists", err)
	}

	if e.lists != nil && len(lists) > 0 {
		if err := e.lists.Set(ctx, boardID, lists); err != nil {
			e.logger.Debug("board list cache write failed", zap.String("board_id", boardID), zap.Error(err))
		}
	}
	return lists, nil
}

func (e *Engine) invalidateLists(ctx context.Context, boardID string) {
	if e.lists == nil {
		return
	}
	if err := e.lists.Invalidate(ctx, boardID); err != nil {
		e.logger.Debug("board list cache invalidate failed", zap.String("board_id", boardID), zap.Error(err))
	}
}

// recordActivity posts the audit comment. Failures go to the outbox and never fail the transition.
func (e *Engine) recordActivity(ctx context.Context, log *zap.Logger, cardID, text string) {
	err := e.board.AddComment(ctx, cardID, text)
	if err == nil {
		return
	}
	if e.outbox == nil {
		log.Warn("activity comment dropped", zap.Error(err))
		return
	}
	if qErr := e.outbox.EnqueueComment(ctx, cardID, text); qErr != nil {
		log.Warn("activity comment dropped", zap.Error(err), zap.NamedError("outbox_error", qErr))
		return
	}
	log.Debug("activity comment queued for retry", zap.Error(err))
}
