package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/repository"
)

const taskColumns = `id, board_id, chat_id, title, description, priority, category, status,
	creator_id, assignee_id, due_date, completed_at, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByExternalID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, storeErr("get task", err, domain.ErrTaskNotFound)
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if !task.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	const query = `
	INSERT INTO tasks (id, board_id, chat_id, title, description, priority, category, status,
		creator_id, assignee_id, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), NOW())
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.BoardID,
		task.ChatID,
		task.Title,
		task.Description,
		task.Priority,
		task.Category,
		string(task.Status),
		task.CreatorID,
		nullString(task.AssigneeID),
		nullTimePtr(task.DueDate),
		nullTime(task.CreatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, storeErr("create task", err, nil)
	}

	return task, nil
}

// Update persists descriptive fields. Status and assignee have dedicated methods.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		priority = $4,
		category = $5,
		due_date = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Category,
		nullTimePtr(task.DueDate),
	).Scan(&task.UpdatedAt); err != nil {
		return storeErr("update task", err, domain.ErrTaskNotFound)
	}

	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, update repository.StatusUpdate) (*domain.Task, error) {
	if update.At.IsZero() {
		update.At = time.Now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin status tx", err, nil)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`, update.TaskID).Scan(&current)
	if err != nil {
		return nil, storeErr("lock task", err, domain.ErrTaskNotFound)
	}
	if domain.Status(current) != update.From {
		return nil, domain.NewError(domain.ErrCodeConflict, "task status changed concurrently")
	}

	query := `
	UPDATE tasks
	SET status = $2,
		completed_at = CASE WHEN $2 = 'done' THEN $3::timestamptz ELSE NULL END,
		updated_at = $3
	WHERE id = $1
	RETURNING ` + taskColumns

	task, err := scanTask(tx.QueryRow(ctx, query, update.TaskID, string(update.To), update.At))
	if err != nil {
		return nil, storeErr("update task status", err, domain.ErrTaskNotFound)
	}

	const history = `
	INSERT INTO task_transitions (task_id, from_status, to_status, actor_id, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, history, update.TaskID, string(update.From), string(update.To), update.ActorID, update.At); err != nil {
		return nil, storeErr("record transition", err, nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit status tx", err, nil)
	}
	return task, nil
}

func (r *taskRepository) SetAssignee(ctx context.Context, id string, assigneeID string) (*domain.Task, error) {
	query := `
	UPDATE tasks
	SET assignee_id = $2,
		updated_at = NOW()
	WHERE id = $1
	RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, nullString(&assigneeID)))
	if err != nil {
		return nil, storeErr("set assignee", err, domain.ErrTaskNotFound)
	}
	return task, nil
}

func (r *taskRepository) GetUpcomingDeadlines(ctx context.Context, from, to time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE status <> 'done'
	  AND due_date IS NOT NULL
	  AND due_date >= $1
	  AND due_date <= $2
	ORDER BY due_date ASC`
	return r.queryTasks(ctx, "upcoming deadlines", query, from, to)
}

func (r *taskRepository) GetOverdueTasks(ctx context.Context, now time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE status <> 'done'
	  AND due_date IS NOT NULL
	  AND due_date < $1
	ORDER BY due_date ASC`
	return r.queryTasks(ctx, "overdue tasks", query, now)
}

func (r *taskRepository) GetOverdueForUser(ctx context.Context, userID string, now time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE (creator_id = $1 OR assignee_id = $1)
	  AND status <> 'done'
	  AND due_date IS NOT NULL
	  AND due_date < $2
	ORDER BY due_date ASC`
	return r.queryTasks(ctx, "user overdue tasks", query, userID, now)
}

func (r *taskRepository) GetUserTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE (creator_id = $1 OR assignee_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY due_date ASC NULLS LAST, created_at DESC
	LIMIT $3 OFFSET $4`
	return r.queryTasks(ctx, "user tasks", query, filter.UserID, string(filter.Status), clampLimit(filter.Limit), filter.Offset)
}

func (r *taskRepository) GetCompletedBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE (creator_id = $1 OR assignee_id = $1)
	  AND status = 'done'
	  AND completed_at >= $2
	  AND completed_at < $3
	ORDER BY completed_at ASC`
	return r.queryTasks(ctx, "completed tasks", query, userID, from, to)
}

func (r *taskRepository) GetDueBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE (creator_id = $1 OR assignee_id = $1)
	  AND status <> 'done'
	  AND due_date >= $2
	  AND due_date < $3
	ORDER BY due_date ASC`
	return r.queryTasks(ctx, "due tasks", query, userID, from, to)
}

func (r *taskRepository) Stats(ctx context.Context, userID string, dayStart, now time.Time) (domain.TaskStats, error) {
	const query = `
	SELECT
		COUNT(*) FILTER (WHERE status = 'done' AND completed_at >= $2 AND completed_at <= $3),
		COUNT(*) FILTER (WHERE status = 'in_progress'),
		COUNT(*) FILTER (WHERE status <> 'done' AND due_date < $3)
	FROM tasks
	WHERE creator_id = $1 OR assignee_id = $1
	`
	var stats domain.TaskStats
	if err := r.pool.QueryRow(ctx, query, userID, dayStart, now).Scan(&stats.Completed, &stats.InProgress, &stats.Overdue); err != nil {
		return domain.TaskStats{}, storeErr("task stats", err, nil)
	}
	return stats, nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return domain.StoreError("postgres unreachable", err)
	}
	return nil
}

func (r *taskRepository) queryTasks(ctx context.Context, what string, query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query "+what, err, nil)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storeErr("scan "+what, err, nil)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate "+what, err, nil)
	}
	return tasks, nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var (
		status   string
		assignee *string
	)

	if err := row.Scan(
		&task.ID,
		&task.BoardID,
		&task.ChatID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Category,
		&status,
		&task.CreatorID,
		&assignee,
		&task.DueDate,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.Status(status)
	task.AssigneeID = assignee
	return &task, nil
}
