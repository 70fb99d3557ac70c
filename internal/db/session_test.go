package db

import (
	"context"
	"errors"
	"testing"

	"taskapi/internal/db/models"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

var taskCols = []string{"id", "title", "description", "completed"}

func newMockSession(t *testing.T) (*Session, pgxmock.PgxConnIface) {
	t.Helper()
	mock, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("create mock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
	return NewSession(mock), mock
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreateTaskReturnsGeneratedID(t *testing.T) {
	s, mock := newMockSession(t)
	desc := strPtr("d")

	mock.ExpectQuery(`INSERT INTO tasks \(title, description, completed\)`).
		WithArgs("A", desc, false).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(7), "A", desc, false))

	task, err := s.CreateTask(context.Background(), models.TaskCreate{Title: "A", Description: desc})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 7 || task.Title != "A" || task.Description == nil || *task.Description != "d" || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestCreateTaskStorageError(t *testing.T) {
	s, mock := newMockSession(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`INSERT INTO tasks`).WillReturnError(boom)

	_, err := s.CreateTask(context.Background(), models.TaskCreate{Title: "A"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestGetTaskByID(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`FROM tasks\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(3), "T", (*string)(nil), true))

	task, err := s.GetTaskByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task == nil || task.ID != 3 || task.Title != "T" || task.Description != nil || !task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestGetTaskByIDAbsent(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`FROM tasks\s+WHERE id = \$1`).
		WithArgs(int64(999999)).
		WillReturnError(pgx.ErrNoRows)

	task, err := s.GetTaskByID(context.Background(), 999999)
	if err != nil {
		t.Fatalf("expected no error for absent row, got %v", err)
	}
	if task != nil {
		t.Fatalf("expected absence, got %+v", task)
	}
}

func TestUpdateTaskFullReplace(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`UPDATE tasks\s+SET title = \$1, description = \$2, completed = \$3\s+WHERE id = \$4`).
		WithArgs("B", (*string)(nil), true, int64(5)).
		WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(5), "B", (*string)(nil), true))

	task, err := s.UpdateTask(context.Background(), 5, models.TaskUpdate{Title: "B", Completed: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if task == nil || task.Title != "B" || task.Description != nil || !task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestUpdateTaskAbsent(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs("B", (*string)(nil), false, int64(42)).
		WillReturnError(pgx.ErrNoRows)

	task, err := s.UpdateTask(context.Background(), 42, models.TaskUpdate{Title: "B"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if task != nil {
		t.Fatalf("expected absence, got %+v", task)
	}
}

func TestDeleteTask(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectExec(`DELETE FROM tasks\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM tasks\s+WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ok, err := s.DeleteTask(context.Background(), 1)
	if err != nil || !ok {
		t.Fatalf("expected first delete to succeed, got %v, %v", ok, err)
	}
	ok, err = s.DeleteTask(context.Background(), 1)
	if err != nil || ok {
		t.Fatalf("expected second delete to report absence, got %v, %v", ok, err)
	}
}

func TestDeleteTaskStorageError(t *testing.T) {
	s, mock := newMockSession(t)
	boom := errors.New("broken pipe")

	mock.ExpectExec(`DELETE FROM tasks`).WithArgs(int64(1)).WillReturnError(boom)

	ok, err := s.DeleteTask(context.Background(), 1)
	if ok || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v, %v", ok, err)
	}
}

func TestListTasksNoFilter(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`FROM tasks\s*$`).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(int64(1), "a", (*string)(nil), true).
			AddRow(int64(2), "b", (*string)(nil), true).
			AddRow(int64(3), "c", (*string)(nil), false))

	tasks, err := s.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
}

func TestListTasksFilter(t *testing.T) {
	for _, completed := range []bool{true, false} {
		s, mock := newMockSession(t)

		mock.ExpectQuery(`FROM tasks\s+WHERE completed = \$1`).
			WithArgs(completed).
			WillReturnRows(pgxmock.NewRows(taskCols).AddRow(int64(1), "a", (*string)(nil), completed))

		tasks, err := s.ListTasks(context.Background(), boolPtr(completed))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Completed != completed {
			t.Fatalf("unexpected tasks for completed=%v: %+v", completed, tasks)
		}
	}
}

func TestListTasksEmptyIsNonNil(t *testing.T) {
	s, mock := newMockSession(t)

	mock.ExpectQuery(`FROM tasks`).WillReturnRows(pgxmock.NewRows(taskCols))

	tasks, err := s.ListTasks(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	var calls int
	s := newSession(nil, func() { calls++ })
	s.Release()
	s.Release()
	if calls != 1 {
		t.Fatalf("expected release to run once, got %d", calls)
	}

	NewSession(nil).Release()
}
