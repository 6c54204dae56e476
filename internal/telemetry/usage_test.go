// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecorder_TurnsAndImages(t *testing.T) {
	r := openTestRecorder(t)

	r.RecordTurn("Sara", 5, 120, 2, 800*time.Millisecond, false)
	r.RecordTurn("Sara", 8, 0, 0, 200*time.Millisecond, true)
	r.RecordTurn("Omar", 3, 40, 0, 300*time.Millisecond, false)
	r.RecordImage("Sara", "16:9", 2*time.Second, false)

	s, err := r.Summarize("Sara")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Turns != 2 {
		t.Errorf("Turns = %d, want 2", s.Turns)
	}
	if s.FailedTurns != 1 {
		t.Errorf("FailedTurns = %d, want 1", s.FailedTurns)
	}
	if s.ReplyRunes != 120 {
		t.Errorf("ReplyRunes = %d, want 120", s.ReplyRunes)
	}
	if s.Images != 1 {
		t.Errorf("Images = %d, want 1", s.Images)
	}
}

func TestRecorder_EmptyUser(t *testing.T) {
	r := openTestRecorder(t)

	s, err := r.Summarize("nobody")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Turns != 0 || s.Images != 0 {
		t.Errorf("Summary = %+v, want zeroes", s)
	}
}

func TestRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	r.RecordTurn("Sara", 1, 2, 0, time.Millisecond, false)
	r.Close()

	r2, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer r2.Close()

	s, err := r2.Summarize("Sara")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if s.Turns != 1 {
		t.Errorf("Turns = %d after reopen, want 1", s.Turns)
	}
}
