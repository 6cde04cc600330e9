package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

type transitionRepository struct {
	pool *pgxpool.Pool
}

// NewTransitionRepository exposes the task_transitions audit trail.
func NewTransitionRepository(pool *pgxpool.Pool) repository.TransitionRepository {
	return &transitionRepository{pool: pool}
}

func (r *transitionRepository) ListByTask(ctx context.Context, taskID string) ([]domain.StatusChange, error) {
	const query = `
	SELECT task_id, from_status, to_status, actor_id, created_at
	FROM task_transitions
	WHERE task_id = $1
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, storeErr("list transitions", err, nil)
	}
	defer rows.Close()

	var changes []domain.StatusChange
	for rows.Next() {
		var (
			change   domain.StatusChange
			from, to string
		)
		if err := rows.Scan(&change.TaskID, &from, &to, &change.ActorID, &change.CreatedAt); err != nil {
			return nil, storeErr("scan transition", err, nil)
		}
		change.From = domain.Status(from)
		change.To = domain.Status(to)
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transitions", err, nil)
	}
	return changes, nil
}
