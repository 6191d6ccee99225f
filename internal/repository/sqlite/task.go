package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/task-manager/internal/apperror"
	"github.com/sakif/task-manager/internal/model"
	"github.com/sakif/task-manager/internal/repository"
)

// compile-time check that *TaskRepo implements the interface
var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implements repository.TaskRepository on the shared pool.
type TaskRepo struct {
	conn *sql.DB
}

// Tasks returns the task repository view of the database.
func (db *DB) Tasks() *TaskRepo {
	return &TaskRepo{conn: db.conn}
}

// Create inserts a new task. As with accounts, an explicit client-supplied
// ID is honoured (and can conflict); an empty one gets a generated xid.
func (r *TaskRepo) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = xid.New().String()
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO tasks (id, description, completed, account_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.Description,
		task.Completed,
		task.AccountID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: tasks.id") {
			return apperror.Conflict("id", fmt.Sprintf("The ID %s is already registered!", task.ID))
		}
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// GetByID retrieves a single task.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, description, completed, account_id, created_at, updated_at
		 FROM tasks
		 WHERE id = ?`,
		id,
	).Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.AccountID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Task not found!")
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	return &task, nil
}

// ListByAccount returns all of an account's tasks in insertion order
// (rowid order — SQLite assigns rowids monotonically on insert).
func (r *TaskRepo) ListByAccount(ctx context.Context, accountID string) ([]model.Task, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, description, completed, account_id, created_at, updated_at
		 FROM tasks
		 WHERE account_id = ?
		 ORDER BY rowid`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Description, &t.Completed, &t.AccountID,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update persists description and completed. id and account_id are not in
// the SET list — they are immutable after creation, and leaving them out of
// the statement makes that true even if a bug upstream were to change them.
func (r *TaskRepo) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET description = ?, completed = ?, updated_at = ?
		 WHERE id = ?`,
		task.Description,
		task.Completed,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Task not found!")
	}

	return nil
}

// Delete removes a single task.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Task not found!")
	}

	return nil
}

// DeleteCompleted removes the account's completed tasks and reports how many
// went. Zero is a normal result — running it twice is expected to return a
// count and then zero.
func (r *TaskRepo) DeleteCompleted(ctx context.Context, accountID string) (int64, error) {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE account_id = ? AND completed = 1`,
		accountID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting completed tasks: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return count, nil
}

// DeleteAll removes every task the account owns and reports the count.
func (r *TaskRepo) DeleteAll(ctx context.Context, accountID string) (int64, error) {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE account_id = ?`,
		accountID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting tasks: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return count, nil
}
