// Package sqlstore is the relational backend: an embedded SQLite database
// holding the serialized collection in a single row of the lists table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/idilsaglam/checklist/internal/store/sqlstore/migrations"
)

var tracer = otel.Tracer("github.com/idilsaglam/checklist/internal/store/sqlstore")

// rowID is the only row ever written.
const rowID = 1

// Store persists the collection blob in SQLite.
type Store struct {
	mu     sync.RWMutex
	sqlDB  *sql.DB
	closed bool
}

// Open opens (or creates) the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle. Available reports false afterwards.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.sqlDB == nil {
		return nil
	}
	s.closed = true
	return s.sqlDB.Close()
}

// Available reports whether the database can be used.
func (s *Store) Available() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sqlDB != nil && !s.closed
}

// LoadBlob returns the stored blob. ok is false when the table is empty.
func (s *Store) LoadBlob(ctx context.Context) ([]byte, bool, error) {
	ctx, span := tracer.Start(ctx, "sqlstore.LoadBlob")
	defer span.End()

	if !s.Available() {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	var data sql.NullString
	err := s.sqlDB.QueryRowContext(ctx, "SELECT data FROM lists WHERE id = ?", rowID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetAttributes(attribute.Bool("lists.found", false))
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, false, fmt.Errorf("select lists: %w", err)
	}
	if !data.Valid {
		span.SetAttributes(attribute.Bool("lists.found", false))
		return nil, false, nil
	}
	span.SetAttributes(
		attribute.Bool("lists.found", true),
		attribute.Int("lists.bytes", len(data.String)),
	)
	return []byte(data.String), true, nil
}

// SaveBlob replaces the stored blob: every row is deleted and row 1 inserted
// in one transaction. Last write wins.
func (s *Store) SaveBlob(ctx context.Context, blob []byte) error {
	ctx, span := tracer.Start(ctx, "sqlstore.SaveBlob",
		trace.WithAttributes(attribute.Int("lists.bytes", len(blob))),
	)
	defer span.End()

	if !s.Available() {
		return fmt.Errorf("storage is not configured")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lists"); err != nil {
		_ = tx.Rollback()
		span.RecordError(err)
		return fmt.Errorf("delete lists: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO lists (id, data) VALUES (?, ?)", rowID, string(blob)); err != nil {
		_ = tx.Rollback()
		span.RecordError(err)
		return fmt.Errorf("insert lists: %w", err)
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
