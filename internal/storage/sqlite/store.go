// Package sqlite persists notification snapshots in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cristianoliveira/motinbox/internal/domain"
)

// Store implements snapshot persistence on SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

type snapshotRow struct {
	Role    string    `db:"role"`
	Unread  int       `db:"unread"`
	SavedAt time.Time `db:"saved_at"`
}

type itemRow struct {
	ID        string `db:"id"`
	EventType string `db:"event_type"`
	EventText string `db:"event_text"`
	Data      string `db:"data"`
	CreatedAt string `db:"created_at"`
	Read      bool   `db:"read"`
}

// Open opens (or creates) the database at dbPath and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite store: db path cannot be empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open db: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: set busy timeout: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SchemaVersion returns the applied schema version.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if currentVersion, err = s.SchemaVersion(); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Save replaces the snapshot of role.
func (s *Store) Save(ctx context.Context, role domain.Role, items []domain.Notification, unread int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (role, unread, saved_at) VALUES (?, ?, ?)",
		string(role), unread, s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", role, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_items WHERE role = ?", string(role)); err != nil {
		return fmt.Errorf("clearing snapshot items %s: %w", role, err)
	}

	if len(items) > 0 {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT OR IGNORE INTO snapshot_items (
				role, position, id, event_type, event_text, data, created_at, read
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert statement: %w", err)
		}
		defer stmt.Close()

		for i, n := range items {
			_, err := stmt.ExecContext(ctx,
				string(role), i, n.ID, n.Event.Type, n.Event.Text, string(n.Data), n.CreatedAt, n.Read)
			if err != nil {
				return fmt.Errorf("inserting snapshot item %s: %w", n.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot %s: %w", role, err)
	}
	return nil
}

// Load returns the snapshot of role, or domain.ErrNoSnapshot.
func (s *Store) Load(ctx context.Context, role domain.Role) (domain.Snapshot, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT role, unread, saved_at FROM snapshots WHERE role = ?", string(role))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("loading snapshot %s: %w", role, err)
	}

	var rows []itemRow
	err = s.db.SelectContext(ctx, &rows, `
		SELECT id, event_type, event_text, data, created_at, read
		FROM snapshot_items WHERE role = ? ORDER BY position`, string(role))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("loading snapshot items %s: %w", role, err)
	}

	items := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		n := domain.Notification{
			ID:        r.ID,
			Event:     domain.EventDescriptor{Type: r.EventType, Text: r.EventText},
			CreatedAt: r.CreatedAt,
			Read:      r.Read,
		}
		if r.Data != "" {
			n.Data = []byte(r.Data)
		}
		items = append(items, n)
	}
	return domain.Snapshot{Role: role, Items: items, Unread: row.Unread, SavedAt: row.SavedAt}, nil
}

// Clear removes every snapshot.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_items"); err != nil {
		return fmt.Errorf("clearing snapshot items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	return tx.Commit()
}
