// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript records every chat message to a SQLite database.
//
// Each shell run (one per interview, plus the roleplay itself) is a session
// with its own UUID. Messages are stored in the order they were appended.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/roleplay/internal/ollama"
)

// ErrClosed is returned when recording to a closed store.
var ErrClosed = errors.New("transcript closed")

// Store is an open transcript database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the transcript database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// NewSession starts a session of the given kind.
func (s *Store) NewSession(ctx context.Context, kind string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, kind, started_at) VALUES (?, ?, ?)",
		id, kind, time.Now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Session{ID: id, Kind: kind, store: s}, nil
}

// Entry is one recorded message.
type Entry struct {
	Seq     int
	Role    string
	Content string
	Model   string
	At      time.Time
}

// Messages returns the messages of a session in order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, role, content, model, created_at FROM messages WHERE session_id = ? ORDER BY seq",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.Seq, &e.Role, &e.Content, &e.Model, &at); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		e.At = time.UnixMilli(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// SESSION
// =============================================================================

// Session records the messages of one shell run. It satisfies chat.Recorder.
type Session struct {
	ID   string
	Kind string

	store *Store
	seq   int
}

// Record appends a message to the session.
func (ss *Session) Record(msg ollama.Message, model string) error {
	s := ss.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	ss.seq++
	if _, err := s.db.Exec(
		"INSERT INTO messages (session_id, seq, role, content, model, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		ss.ID, ss.seq, msg.Role, msg.Content, model, time.Now().UnixMilli()); err != nil {
		ss.seq--
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}
