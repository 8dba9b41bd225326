package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/statemap/pkg/domain"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrStoreClosed is returned by every method once Close has been called.
var ErrStoreClosed = errors.New("store is closed")

// Store implements ports.DiagramStore on a single SQLite table.
// It is suitable for single-process use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New opens (or creates) the database at path. Use ":memory:" for a
// throwaway database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS diagrams (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			layout BLOB,
			config BLOB,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save inserts or replaces the diagram.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	var config []byte
	if diagram.Config != nil {
		var err error
		if config, err = json.Marshal(diagram.Config); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diagrams (id, name, layout, config, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			layout = excluded.layout,
			config = excluded.config,
			updated_at = excluded.updated_at
	`, diagram.ID, diagram.Name, []byte(diagram.Layout), config, diagram.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save diagram: %w", err)
	}
	return nil
}

// Load reads one diagram.
func (s *Store) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	var (
		d         = domain.Diagram{ID: id}
		layout    []byte
		config    []byte
		timestamp string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, layout, config, updated_at FROM diagrams WHERE id = ?
	`, id).Scan(&d.Name, &layout, &config, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDiagramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load diagram: %w", err)
	}

	if len(layout) > 0 {
		d.Layout = json.RawMessage(layout)
	}
	if len(config) > 0 {
		d.Config = &domain.Document{}
		if err := json.Unmarshal(config, d.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config of %s: %w", id, err)
		}
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", id, err)
	}
	return &d, nil
}

// Delete removes one diagram.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	return nil
}

// List returns every diagram id, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM diagrams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan diagram id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagrams: %w", err)
	}
	return ids, nil
}

// Close releases the database. Calling it twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
