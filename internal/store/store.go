// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/util"
)

const (
	conversationFile = "conversation.json"
	imagesFile       = "images.json"
	lastUserFile     = "last_user"
)

// =============================================================================
// STORE
// =============================================================================

// Store reads and writes per-user state under a base directory.
// Layout:
//
//	<base>/users/<username>/conversation.json
//	<base>/users/<username>/images.json
//	<base>/last_user
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// DefaultBaseDir returns the standard data directory, ~/.lorzz.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".lorzz"), nil
}

// NewStore creates a store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the root of the store on disk.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// userDir maps a display name to a filesystem-safe directory.
// Distinct safe names stay distinct; unsafe runes collapse to '_'.
func (s *Store) userDir(username string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(username))
	if safe == "" || safe == "." || safe == ".." {
		safe = "_"
	}
	return filepath.Join(s.baseDir, "users", safe)
}

// =============================================================================
// CONVERSATION PERSISTENCE
// =============================================================================

// LoadConversation returns the saved conversation for a username, or nil
// when none exists. A corrupt file reads as absent.
func (s *Store) LoadConversation(username string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.userDir(username), conversationFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		// Corrupt history starts the user fresh instead of locking them out.
		return nil, nil
	}
	if conv.Messages == nil {
		conv.Messages = make([]*model.Message, 0)
	}
	conv.Username = username
	return &conv, nil
}

// SaveConversation writes the whole conversation atomically.
// Ephemeral fields (streaming flags, attachment paths) never hit disk.
func (s *Store) SaveConversation(conv *model.Conversation) error {
	if conv == nil {
		return fmt.Errorf("nil conversation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	path := filepath.Join(s.userDir(conv.Username), conversationFile)
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write conversation: %w", err)
	}
	return nil
}

// =============================================================================
// IMAGE HISTORY PERSISTENCE
// =============================================================================

// LoadImages returns the saved gallery for a username, newest first.
// Missing or corrupt files read as an empty gallery.
func (s *Store) LoadImages(username string) ([]model.ImageHistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.userDir(username), imagesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read image history: %w", err)
	}

	var items []model.ImageHistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil
	}
	if len(items) > model.MaxImageHistory {
		items = items[:model.MaxImageHistory]
	}
	return items, nil
}

// SaveImages writes the whole gallery atomically.
func (s *Store) SaveImages(username string, items []model.ImageHistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = make([]model.ImageHistoryItem, 0)
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal image history: %w", err)
	}

	path := filepath.Join(s.userDir(username), imagesFile)
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image history: %w", err)
	}
	return nil
}

// ClearImages removes the saved gallery for a username.
func (s *Store) ClearImages(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.userDir(username), imagesFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear image history: %w", err)
	}
	return nil
}

// =============================================================================
// LAST USER
// =============================================================================

// LastUser returns the most recently logged-in display name, or "".
func (s *Store) LastUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.baseDir, lastUserFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetLastUser records the display name to prefill the next login.
func (s *Store) SetLastUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.baseDir, lastUserFile)
	if err := util.AtomicWriteFile(path, []byte(username+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write last user: %w", err)
	}
	return nil
}
