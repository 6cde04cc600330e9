package services

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fastygo/taskpulse/internal/infrastructure/outbox"
	"github.com/fastygo/taskpulse/usecase"
)

// CommentQueue is the durable queue behind the relay.
type CommentQueue interface {
	Enqueue(ctx context.Context, comment outbox.Comment) error
	GetBatch(ctx context.Context, limit int) ([]outbox.Comment, error)
	Remove(ctx context.Context, comment outbox.Comment) error
	Requeue(ctx context.Context, comment outbox.Comment, cause error) error
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)
	Size() (int, error)
}

// RelayConfig controls how the outbox is drained.
type RelayConfig struct {
	BatchSize  int
	MaxRetries int
}

// FlushReport summarizes one drain of the outbox.
type FlushReport struct {
	Delivered int
	Requeued  int
	Dropped   int
	Err       error
}

// ActivityRelay stores board comments that failed and replays them later.
type ActivityRelay struct {
	queue  CommentQueue
	board  usecase.BoardClient
	cfg    RelayConfig
	logger *zap.Logger
}

func NewActivityRelay(queue CommentQueue, board usecase.BoardClient, cfg RelayConfig, logger *zap.Logger) *ActivityRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRelay{
		queue:  queue,
		board:  board,
		cfg:    cfg,
		logger: logger,
	}
}

// EnqueueComment persists a comment for a later flush.
func (r *ActivityRelay) EnqueueComment(ctx context.Context, taskID, text string) error {
	if err := r.queue.Enqueue(ctx, outbox.Comment{TaskID: taskID, Text: text}); err != nil {
		return err
	}
	r.logger.Debug("activity comment queued", zap.String("task_id", taskID))
	return nil
}

// Flush posts one batch of queued comments to the board.
// A comment that keeps failing is dropped once it reaches the retry limit.
func (r *ActivityRelay) Flush(ctx context.Context) (FlushReport, error) {
	comments, err := r.queue.GetBatch(ctx, r.cfg.BatchSize)
	if err != nil {
		return FlushReport{}, err
	}

	var report FlushReport
	for _, comment := range comments {
		if ctx.Err() != nil {
			report.Err = multierr.Append(report.Err, ctx.Err())
			break
		}

		sendErr := r.board.AddComment(ctx, comment.TaskID, comment.Text)
		if sendErr == nil {
			report.Delivered++
			if err := r.queue.Remove(ctx, comment); err != nil {
				r.logger.Warn("failed to purge delivered comment", zap.String("comment_id", comment.ID), zap.Error(err))
				report.Err = multierr.Append(report.Err, err)
			}
			continue
		}

		if comment.Attempts+1 >= r.cfg.MaxRetries {
			r.logger.Warn("dropping activity comment (max retries reached)",
				zap.String("comment_id", comment.ID),
				zap.String("task_id", comment.TaskID),
				zap.Error(sendErr))
			report.Dropped++
			if err := r.queue.Remove(ctx, comment); err != nil {
				report.Err = multierr.Append(report.Err, err)
			}
			continue
		}

		report.Requeued++
		if err := r.queue.Requeue(ctx, comment, sendErr); err != nil {
			r.logger.Error("failed to requeue activity comment", zap.String("comment_id", comment.ID), zap.Error(err))
			report.Err = multierr.Append(report.Err, err)
		}
	}

	if len(comments) > 0 {
		r.logger.Info("activity outbox flushed",
			zap.Int("delivered", report.Delivered),
			zap.Int("requeued", report.Requeued),
			zap.Int("dropped", report.Dropped))
	}
	return report, nil
}

// Purge removes queued comments older than cutoff.
func (r *ActivityRelay) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return r.queue.Cleanup(ctx, cutoff)
}

// Size returns the number of queued comments, or zero when the queue cannot be read.
func (r *ActivityRelay) Size() int {
	size, err := r.queue.Size()
	if err != nil {
		return 0
	}
	return size
}

var _ usecase.ActivityOutbox = (*ActivityRelay)(nil)
