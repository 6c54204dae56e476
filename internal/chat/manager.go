// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/lorzz-tui/internal/gemini"
	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/store"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Streamer is the slice of the language client the manager needs.
type Streamer interface {
	NewSession() *gemini.Session
	StreamMessage(ctx context.Context, session *gemini.Session, text string, attachment *gemini.Attachment, callback gemini.StreamCallback) error
}

// UsageRecorder receives best-effort usage telemetry. May be nil.
type UsageRecorder interface {
	RecordTurn(username string, promptRunes, replyRunes, sources int, duration time.Duration, failed bool)
}

// =============================================================================
// UPDATES
// =============================================================================

// Update is one notification emitted while a turn streams. Conversation is
// a deep copy safe to render; Done marks the final update of the turn.
type Update struct {
	Conversation *model.Conversation
	Done         bool

	// Err is the underlying failure when the turn failed, for logging.
	// The user-facing message is already in the conversation.
	Err error
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager coordinates one user's conversation with the language API.
// All exported methods are safe for concurrent use.
type Manager struct {
	store  *store.Store
	client Streamer
	usage  UsageRecorder

	mu           sync.Mutex
	username     string
	conversation *model.Conversation
	session      *gemini.Session
	busy         bool
}

// NewManager creates a manager over the given store and language client.
func NewManager(st *store.Store, client Streamer) *Manager {
	return &Manager{store: st, client: client}
}

// SetUsageRecorder wires optional usage telemetry.
func (m *Manager) SetUsageRecorder(r UsageRecorder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = r
}

// Initialize binds the manager to a display name: it loads the saved
// history or seeds a fresh one with the welcome greeting, persists the
// seed, and opens a new API session. Safe to call again to switch users.
func (m *Manager) Initialize(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is empty")
	}

	conv, err := m.store.LoadConversation(username)
	if err != nil {
		// An unreadable store degrades to a fresh history, never a crash.
		log.Printf("chat: failed to load history for %q: %v", username, err)
		conv = nil
	}
	seeded := false
	if conv == nil || conv.IsEmpty() {
		conv = model.NewConversation(username)
		conv.Append(model.NewWelcomeMessage(username))
		seeded = true
	}

	m.mu.Lock()
	m.username = username
	m.conversation = conv
	m.session = m.client.NewSession()
	m.busy = false
	m.mu.Unlock()

	if seeded {
		if err := m.store.SaveConversation(conv); err != nil {
			log.Printf("chat: failed to persist welcome for %q: %v", username, err)
		}
	}

	// Best effort: login should not fail over a prefill hint.
	if err := m.store.SetLastUser(username); err != nil {
		log.Printf("chat: failed to remember last user: %v", err)
	}
	return nil
}

// Username returns the bound display name, or "".
func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username
}

// Busy reports whether a turn is currently in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Messages returns a deep copy of the conversation for rendering.
func (m *Manager) Messages() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conversation == nil {
		return nil
	}
	return m.conversation.Clone()
}

// =============================================================================
// STREAMING TURN
// =============================================================================

// SendMessage starts one streamed turn. The returned channel delivers an
// Update per received chunk and a final one with Done set, then closes.
// The conversation is persisted on both success and failure before the
// final update is emitted.
//
// Rejections (empty message, overlapping turn) are returned synchronously
// and leave the conversation untouched.
func (m *Manager) SendMessage(ctx context.Context, text string, attachment *model.Attachment) (<-chan Update, error) {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	switch {
	case m.conversation == nil:
		m.mu.Unlock()
		return nil, ErrNotInitialized
	case text == "" && attachment == nil:
		m.mu.Unlock()
		return nil, ErrEmptyMessage
	case m.busy:
		m.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	m.busy = true
	userMsg := model.NewUserMessage(m.username, text, attachment)
	placeholder := model.NewAssistantPlaceholder()
	m.conversation.Append(userMsg)
	m.conversation.Append(placeholder)
	session := m.session
	m.mu.Unlock()

	updates := make(chan Update, 8)
	go m.runTurn(ctx, session, text, attachment, placeholder, updates)
	return updates, nil
}

// runTurn drives one streamed exchange to completion or failure.
func (m *Manager) runTurn(ctx context.Context, session *gemini.Session, text string, attachment *model.Attachment, placeholder *model.Message, updates chan<- Update) {
	defer close(updates)
	started := time.Now()

	inline, err := loadAttachment(attachment)
	if err == nil {
		// Sources are unique by URI, ordered by first appearance.
		seen := make(map[string]bool)
		var sources []model.Source

		err = m.client.StreamMessage(ctx, session, text, inline, func(chunk gemini.StreamChunk) {
			m.mu.Lock()
			placeholder.AppendChunk(chunk.Text)
			for _, src := range chunk.Sources {
				if !seen[src.URI] {
					seen[src.URI] = true
					sources = append(sources, model.Source{URI: src.URI, Title: src.Title})
				}
			}
			snapshot := m.conversation.Clone()
			m.mu.Unlock()
			updates <- Update{Conversation: snapshot}
		})

		if err == nil {
			m.mu.Lock()
			placeholder.FinalizeStream(sources)
			m.finishTurnLocked()
			snapshot := m.conversation.Clone()
			m.mu.Unlock()

			m.recordTurn(text, placeholder, started, false)
			updates <- Update{Conversation: snapshot, Done: true}
			return
		}
	}

	// Failure: the placeholder disappears and a readable error message
	// takes its place, persisted like any other assistant message.
	m.mu.Lock()
	m.conversation.Remove(placeholder.ID)
	m.conversation.Append(model.NewAssistantMessage(ClassifyError(err)))
	m.finishTurnLocked()
	snapshot := m.conversation.Clone()
	m.mu.Unlock()

	m.recordTurn(text, placeholder, started, true)
	updates <- Update{Conversation: snapshot, Done: true, Err: err}
}

// finishTurnLocked persists the conversation and clears the busy flag.
// Callers hold m.mu.
func (m *Manager) finishTurnLocked() {
	// A failed save must not wedge the manager; the next turn retries it.
	if err := m.store.SaveConversation(m.conversation); err != nil {
		log.Printf("chat: failed to persist conversation for %q: %v", m.username, err)
	}
	m.busy = false
}

// recordTurn emits best-effort usage telemetry.
func (m *Manager) recordTurn(text string, placeholder *model.Message, started time.Time, failed bool) {
	m.mu.Lock()
	usage := m.usage
	username := m.username
	replyRunes := len([]rune(placeholder.Text))
	sources := len(placeholder.Sources)
	m.mu.Unlock()

	if usage == nil {
		return
	}
	usage.RecordTurn(username, len([]rune(text)), replyRunes, sources, time.Since(started), failed)
}

// loadAttachment reads the attached file into an inline payload.
// Metadata-only attachments (no path) attach nothing to the API call.
func loadAttachment(att *model.Attachment) (*gemini.Attachment, error) {
	if att == nil || att.Path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(att.Path)
	if err != nil {
		return nil, err
	}
	mime := att.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return &gemini.Attachment{MIMEType: mime, Data: data}, nil
}
