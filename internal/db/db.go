package db

import (
	"context"
	_ "embed"
	"fmt"

	"taskapi/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL for the tasks table.
func Schema() string {
	return schema
}

type DB struct {
	*pgxpool.Pool
}

func New(dbConfig config.Database) (*DB, error) {
	// Create a configuration object
	cfg, err := pgxpool.ParseConfig(dbConfig.URL())
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Configure connection pool and statement cache
	cfg.MaxConns = dbConfig.MaxConns
	cfg.MinConns = dbConfig.MinConns
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(context.Background(), dbConfig.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &DB{pool}, nil
}

// EnsureSchema creates the tasks table when it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// Session acquires a dedicated connection for the lifetime of one request.
// The caller must Release it.
func (db *DB) Session(ctx context.Context) (*Session, error) {
	conn, err := db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("error acquiring connection: %w", err)
	}
	return newSession(conn, conn.Release), nil
}
