package api

import (
	"context"

	"taskapi/internal/db"
	"taskapi/internal/db/models"
)

// Session is one request's exclusive handle on storage.
type Session interface {
	CreateTask(ctx context.Context, in models.TaskCreate) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, in models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	ListTasks(ctx context.Context, completed *bool) ([]*models.Task, error)
	Release()
}

// Store hands out sessions. Each handler acquires its own and releases it
// before returning.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
}

type dbStore struct {
	db *db.DB
}

// FromDB exposes a pgx-backed database as a Store.
func FromDB(database *db.DB) Store {
	return dbStore{db: database}
}

func (s dbStore) Acquire(ctx context.Context) (Session, error) {
	sess, err := s.db.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s dbStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
