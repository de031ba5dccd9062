// Package deadletter is a sqlite-backed audit trail for messages actorsys
// could not deliver. It is deliberately not a persistence layer for actor
// state: actors remain purely in-memory, matching the spec's scope — this
// store only remembers that a message was dropped, when, and why, so an
// operator can go look.
package deadletter

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/latticehost/actorhost/internal/actorsys"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store is a sqlite3-backed actorsys.DeadLetterSink. It satisfies the
// DeadLetterSink interface directly, so it can be handed straight to
// actorsys.WithDeadLetterSink.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and brings
// its schema up to the latest migration.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("deadletter: creating database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("deadletter: opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("deadletter: running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	source, err := httpfs.New(http.FS(migrationFiles), "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("migrations", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements actorsys.DeadLetterSink by inserting one row per dead
// letter. Insert failures are not propagated (a sink must never make the
// supervisor that produced the entry fail); they are dropped with the
// entry itself, which is the best this package can do without a second
// place to report to.
func (s *Store) Record(ctx context.Context, entry actorsys.DeadLetterEntry) {
	var reason string
	if entry.Reason != nil {
		reason = entry.Reason.Error()
	}

	_, _ = s.db.ExecContext(ctx, `
		INSERT INTO dead_letters (system_id, actor_id, message_type, reason)
		VALUES (?, ?, ?, ?)
	`, string(entry.SystemID), entry.ActorID, entry.MessageType, reason)
}

// Entry is a row read back from the dead-letter store.
type Entry struct {
	ID          int64
	SystemID    string
	ActorID     uint64
	MessageType string
	Reason      string
	RecordedAt  time.Time
}

// List returns the most recently recorded dead letters, newest first,
// bounded by limit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, system_id, actor_id, message_type, reason, recorded_at
		FROM dead_letters
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("deadletter: querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			actorID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.SystemID, &actorID, &e.MessageType, &e.Reason, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("deadletter: scanning row: %w", err)
		}
		if actorID.Valid {
			e.ActorID = uint64(actorID.Int64)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
