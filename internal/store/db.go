package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

// MemoryPath opens a database that lives as long as the process.
const MemoryPath = ":memory:"

// NewDB opens the DuckDB database at path. MemoryPath (or "") opens an in-memory database.
func NewDB(path string) (*sql.DB, error) {
	dsn := path
	if path == MemoryPath {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %q: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb at %q: %w", path, err)
	}

	return db, nil
}

// QueryInterceptor is the subset of *sql.DB the sub-stores run their queries through.
type QueryInterceptor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loggingInterceptor logs every query with its duration at debug level.
type loggingInterceptor struct {
	db *sql.DB
}

func newLoggingInterceptor(db *sql.DB) *loggingInterceptor {
	return &loggingInterceptor{db: db}
}

func (l *loggingInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer l.log(time.Now(), query, args)
	return l.db.ExecContext(ctx, query, args...)
}

func (l *loggingInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer l.log(time.Now(), query, args)
	return l.db.QueryContext(ctx, query, args...)
}

func (l *loggingInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer l.log(time.Now(), query, args)
	return l.db.QueryRowContext(ctx, query, args...)
}

func (l *loggingInterceptor) log(start time.Time, query string, args []any) {
	zap.S().Named("store").Debugw("query", "sql", query, "args", args, "duration", time.Since(start))
}
