// Package history persists the supervision journal in a local SQLite
// database, so state transitions and recovery attempts survive restarts and
// can be inspected after the fact.
package history

import (
	"database/sql"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wgsentinel/wg-sentinel/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id     TEXT PRIMARY KEY,
	at     INTEGER NOT NULL,
	kind   TEXT NOT NULL,
	state  TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_at ON events (at);
`

// Store is a SQLite-backed supervision journal. It implements
// common.Journal. Safe for concurrent use.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the journal database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := common.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, common.WrapError(err, "failed to create journal directory")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, common.WrapError(err, "failed to open journal database")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "failed to apply journal schema")
	}

	return &Store{db: db}, nil
}

// Append records one event. Timestamps are stored as unix milliseconds.
func (s *Store) Append(ev common.Event) error {
	if err := s.check(); err != nil {
		return err
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, at, kind, state, detail) VALUES (?, ?, ?, ?, ?)",
		ev.ID, ev.At.UnixMilli(), ev.Kind, ev.State, ev.Detail,
	)
	if err != nil {
		return common.WrapError(err, "failed to append journal event")
	}
	return nil
}

// Recent returns up to n events, newest first.
func (s *Store) Recent(n int) ([]common.Event, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(
		"SELECT id, at, kind, state, detail FROM events ORDER BY at DESC, rowid DESC LIMIT ?", n)
	if err != nil {
		return nil, common.WrapError(err, "failed to query journal events")
	}
	defer rows.Close()

	var events []common.Event
	for rows.Next() {
		var ev common.Event
		var at int64
		if err := rows.Scan(&ev.ID, &at, &ev.Kind, &ev.State, &ev.Detail); err != nil {
			return nil, common.WrapError(err, "failed to scan journal event")
		}
		ev.At = time.UnixMilli(at)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to read journal events")
	}

	return events, nil
}

// Close closes the underlying database. Further calls on the store return
// ErrJournalClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.ErrJournalClosed
	}
	return nil
}
