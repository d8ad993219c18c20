// Package store persists per-player progress blobs in SQLite. Writes go
// through a single writer goroutine so the tracker loop never blocks on
// disk; reads happen at join time only.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB

	ch   chan saveReq
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex // guards closed and the ch send against Close
	closed bool
}

type saveReq struct {
	playerID string
	blob     []byte
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteStore{
		db: db,
		ch: make(chan saveReq, 256),
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS player_progress (
	player_id  TEXT PRIMARY KEY,
	blob       BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`)
	return err
}

// Load returns the latest saved blob for the player. A miss is not an
// error.
func (s *SQLiteStore) Load(playerID string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRow(
		`SELECT blob FROM player_progress WHERE player_id = ?`, playerID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Save enqueues the blob for the writer goroutine. The newest enqueued
// blob per player wins; a full queue drops the oldest pending write since
// a later sync always carries the full state again. Safe to call
// concurrently with Close.
func (s *SQLiteStore) Save(playerID string, blob []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store closed")
	}
	cp := append([]byte(nil), blob...)
	for {
		select {
		case s.ch <- saveReq{playerID: playerID, blob: cp}:
			return nil
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

func (s *SQLiteStore) writer() {
	defer s.wg.Done()
	for req := range s.ch {
		_, err := s.db.Exec(
			`INSERT INTO player_progress (player_id, blob, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(player_id) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
			req.playerID, req.blob, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			// Nothing useful to do from the writer; the next sync retries.
			continue
		}
	}
}

// Close drains pending writes and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
