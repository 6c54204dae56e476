// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS chat_turns (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	username     TEXT NOT NULL,
	prompt_runes INTEGER NOT NULL,
	reply_runes  INTEGER NOT NULL,
	sources      INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS image_requests (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	username     TEXT NOT NULL,
	aspect_ratio TEXT NOT NULL,
	duration_ms  INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chat_turns_user ON chat_turns(username);
CREATE INDEX IF NOT EXISTS idx_image_requests_user ON image_requests(username);
`

// =============================================================================
// RECORDER
// =============================================================================

// Recorder writes usage rows to a local SQLite database.
// All methods are safe for concurrent use; record methods never fail the
// caller, they drop the row instead.
type Recorder struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the usage database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	// Single writer keeps things simple; WAL lets reads coexist.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure usage database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create usage schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

// RecordTurn logs one chat turn. Errors are swallowed.
func (r *Recorder) RecordTurn(username string, promptRunes, replyRunes, sources int, duration time.Duration, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.db.Exec(
		`INSERT INTO chat_turns (username, prompt_runes, reply_runes, sources, duration_ms, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		username, promptRunes, replyRunes, sources, duration.Milliseconds(), boolToInt(failed),
	)
}

// RecordImage logs one image generation request. Errors are swallowed.
func (r *Recorder) RecordImage(username, aspectRatio string, duration time.Duration, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.db.Exec(
		`INSERT INTO image_requests (username, aspect_ratio, duration_ms, failed) VALUES (?, ?, ?, ?)`,
		username, aspectRatio, duration.Milliseconds(), boolToInt(failed),
	)
}

// =============================================================================
// SUMMARIES
// =============================================================================

// UserSummary aggregates one user's recorded activity.
type UserSummary struct {
	Turns       int
	FailedTurns int
	ReplyRunes  int64
	Images      int
}

// Summarize returns the aggregate usage for a username.
func (r *Recorder) Summarize(username string) (UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s UserSummary
	row := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(failed), 0), COALESCE(SUM(reply_runes), 0) FROM chat_turns WHERE username = ?`,
		username,
	)
	if err := row.Scan(&s.Turns, &s.FailedTurns, &s.ReplyRunes); err != nil {
		return UserSummary{}, fmt.Errorf("failed to summarize turns: %w", err)
	}

	row = r.db.QueryRow(`SELECT COUNT(*) FROM image_requests WHERE username = ?`, username)
	if err := row.Scan(&s.Images); err != nil {
		return UserSummary{}, fmt.Errorf("failed to summarize images: %w", err)
	}
	return s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
