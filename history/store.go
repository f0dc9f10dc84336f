// Package history records committed sort actions in a per-folder SQLite
// journal. Recording is best-effort: a journal failure must never block or
// roll back the action it describes.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes; old journals are
// rejected rather than migrated.
const schemaVersion = 1

// Action names recorded in the journal.
const (
	ActionMark   = "mark"
	ActionUnmark = "unmark"
	ActionDelete = "delete"
	ActionMove   = "move"
)

// Entry is one recorded action.
type Entry struct {
	ID          int64
	Session     string
	Archive     string
	ModName     string
	ModType     string
	Action      string
	Destination string
	CreatedAt   time.Time
}

// Store is a SQLite-backed action journal. Each Open starts a new session
// identifier so one run's actions can be told apart from another's.
type Store struct {
	db      *sql.DB
	path    string
	session string
}

// Open opens (creating if needed) the journal database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, session: uuid.NewString()}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("history database has schema version %d, expected %d (delete %s to reset)",
			version, schemaVersion, s.path)
	}
	return nil
}

// Session returns this store's session identifier.
func (s *Store) Session() string { return s.session }

// Record appends one action to the journal.
func (s *Store) Record(ctx context.Context, e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO actions (session, archive, mod_name, mod_type, action, destination, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.session, e.Archive, e.ModName, e.ModType, e.Action, e.Destination,
		createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT id, session, archive, mod_name, mod_type, action, destination, created_at FROM actions ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Session, &e.Archive, &e.ModName, &e.ModType, &e.Action, &e.Destination, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
