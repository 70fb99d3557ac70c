package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskapi/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by pooled connections, plain
// connections and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Session runs task queries on a single connection. Every write is its own
// autocommitted statement.
type Session struct {
	q       Querier
	release func()
	once    sync.Once
}

// NewSession wraps q. Releasing the returned session is a no-op; the caller
// keeps ownership of q.
func NewSession(q Querier) *Session {
	return newSession(q, nil)
}

func newSession(q Querier, release func()) *Session {
	return &Session{q: q, release: release}
}

// Release hands the connection back to the pool. Safe to call more than once.
func (s *Session) Release() {
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

const taskColumns = `id, title, description, completed`

// CreateTask inserts a new task and returns it with its generated id
func (s *Session) CreateTask(ctx context.Context, in models.TaskCreate) (*models.Task, error) {
	query := `
		INSERT INTO tasks (title, description, completed)
		VALUES ($1, $2, $3)
		RETURNING ` + taskColumns

	task, err := scanTask(s.q.QueryRow(ctx, query, in.Title, in.Description, in.Completed))
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// GetTaskByID retrieves a task by its ID. A nil task means no such row.
func (s *Session) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1`

	task, err := scanTask(s.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting task %d: %w", id, err)
	}
	return task, nil
}

// UpdateTask overwrites title, description and completed. A nil task means
// no such row and nothing was written.
func (s *Session) UpdateTask(ctx context.Context, id int64, in models.TaskUpdate) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3
		WHERE id = $4
		RETURNING ` + taskColumns

	task, err := scanTask(s.q.QueryRow(ctx, query, in.Title, in.Description, in.Completed, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error updating task %d: %w", id, err)
	}
	return task, nil
}

// DeleteTask removes a task. It reports false when the row did not exist.
func (s *Session) DeleteTask(ctx context.Context, id int64) (bool, error) {
	query := `
		DELETE FROM tasks
		WHERE id = $1`

	tag, err := s.q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("error deleting task %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListTasks returns every task, or only those whose completed flag equals
// *completed when it is non-nil. Rows come back in storage order.
func (s *Session) ListTasks(ctx context.Context, completed *bool) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks`
	var args []any
	if completed != nil {
		query += `
		WHERE completed = $1`
		args = append(args, *completed)
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
