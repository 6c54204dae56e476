// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/lorzz-tui/internal/util"
)

// AssistantName is the fixed identity the assistant signs its messages with.
const AssistantName = "Lorzz AI"

// WelcomeMessageID is the fixed identifier of the synthesized greeting, so
// re-initializing an empty history stays idempotent.
const WelcomeMessageID = "welcome-message"

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is a web citation backing part of an assistant reply.
// Within one message sources are unique by URI.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment describes a file sent with a user message.
//
// Path is an ephemeral local reference used to read and preview the file
// during the session. It is never persisted: after a reload only the name
// and MIME type survive.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"type"`
	Path     string `json:"-"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	CreatedAt time.Time `json:"timestamp"`

	// Content. Text is mutable while IsStreaming is set, immutable after.
	Text string `json:"text"`

	// Streaming state (not persisted)
	IsStreaming bool `json:"-"`

	// Citation sources, attached only when non-empty after the stream ends.
	Sources []Source `json:"sources,omitempty"`

	// Optional attached file metadata.
	Attachment *Attachment `json:"file,omitempty"`
}

// NewUserMessage creates a message authored by the given display name.
func NewUserMessage(sender, text string, attachment *Attachment) *Message {
	return &Message{
		ID:         uuid.NewString(),
		Sender:     sender,
		Text:       text,
		CreatedAt:  time.Now(),
		Attachment: attachment,
	}
}

// NewAssistantMessage creates a finished assistant message.
func NewAssistantMessage(text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Sender:    AssistantName,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewAssistantPlaceholder creates an empty assistant message with the
// streaming flag set. Chunks are appended to it as they arrive.
func NewAssistantPlaceholder() *Message {
	return &Message{
		ID:          uuid.NewString(),
		Sender:      AssistantName,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// NewWelcomeMessage creates the greeting shown to a first-time user.
func NewWelcomeMessage(username string) *Message {
	return &Message{
		ID:        WelcomeMessageID,
		Sender:    AssistantName,
		Text:      "مرحباً بك يا " + username + "! أنا لورز، مساعدك الذكي الفائق. أنا هنا لمساعدتك في أي شيء. كيف يمكنني إبهارك اليوم؟",
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsAssistant reports whether this message was authored by the assistant.
func (m *Message) IsAssistant() bool {
	return m.Sender == AssistantName
}

// AppendChunk appends incremental text to a streaming message.
// Text of a finished message is immutable, so this is a no-op then.
func (m *Message) AppendChunk(chunk string) {
	if m.IsStreaming {
		m.Text += chunk
	}
}

// FinalizeStream clears the streaming flag and attaches the deduplicated
// source list. An empty list stays absent rather than becoming [].
func (m *Message) FinalizeStream(sources []Source) {
	if !m.IsStreaming {
		return
	}
	m.IsStreaming = false
	if len(sources) > 0 {
		m.Sources = sources
	}
}

// Preview returns a single-line truncated preview of the message text.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Text), maxRunes)
}

// Clone returns a copy of the message safe for rendering while the
// original keeps mutating.
func (m *Message) Clone() *Message {
	cp := *m
	if m.Attachment != nil {
		att := *m.Attachment
		cp.Attachment = &att
	}
	if len(m.Sources) > 0 {
		cp.Sources = append([]Source(nil), m.Sources...)
	}
	return &cp
}
