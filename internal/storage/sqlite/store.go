// Package sqlite provides a SQLite-backed telemetry store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/worldbridge/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/worldbridge/internal/storage"
	"github.com/louisbranch/worldbridge/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists telemetry events in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite telemetry store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendTelemetryEvent inserts one telemetry record.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	name := strings.TrimSpace(evt.Name)
	if name == "" {
		return fmt.Errorf("event name is required")
	}
	severity := strings.TrimSpace(evt.Severity)
	if severity == "" {
		severity = "INFO"
	}
	timestamp := evt.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO telemetry_events (name, severity, message, created_at) VALUES (?, ?, ?, ?)`,
		name, severity, evt.Message, toMillis(timestamp))
	if err != nil {
		return fmt.Errorf("insert telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns the most recent events, newest first.
func (s *Store) ListTelemetryEvents(ctx context.Context, limit int) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, severity, message, created_at FROM telemetry_events ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var evt storage.TelemetryEvent
		var createdAt int64
		if err := rows.Scan(&evt.Name, &evt.Severity, &evt.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan telemetry event: %w", err)
		}
		evt.Timestamp = fromMillis(createdAt)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry events: %w", err)
	}
	return events, nil
}
