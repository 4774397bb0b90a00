// Package sqlite implements the timetable cache on an SQLite database via
// database/sql and the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/hyperapi/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store owns the cache schema and its connection pool.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database at dsn, verifies the connection and creates
// the schema when it is missing.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, logger: logger}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// The cache is destroyed and rebuilt every refresh cycle, so the schema is
// created idempotently at open instead of going through versioned
// migrations. Natural keys are UNIQUE so entity inserts can rely on
// INSERT OR IGNORE, and link tables carry foreign keys so referential
// integrity holds structurally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		course_id TEXT NOT NULL,
		course_name TEXT NOT NULL,
		UNIQUE(course_id, course_name)
	)`,
	`CREATE TABLE IF NOT EXISTS teachers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		UNIQUE(name)
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		number TEXT NOT NULL,
		UNIQUE(number)
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		UNIQUE(name)
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		session_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_courses (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		course_id INTEGER NOT NULL REFERENCES courses(id),
		UNIQUE(session_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS session_teachers (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		teacher_id INTEGER NOT NULL REFERENCES teachers(id),
		UNIQUE(session_id, teacher_id)
	)`,
	`CREATE TABLE IF NOT EXISTS session_rooms (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		room_id INTEGER NOT NULL REFERENCES rooms(id),
		UNIQUE(session_id, room_id)
	)`,
	`CREATE TABLE IF NOT EXISTS session_classes (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		class_id INTEGER NOT NULL REFERENCES classes(id),
		UNIQUE(session_id, class_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time)`,
}

func (s *Store) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// TransactionFunc runs inside a database transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (s *Store) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError folds driver-specific failures into the persistence sentinels so
// callers can branch without string matching.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "constraint failed") {
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
