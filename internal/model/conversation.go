// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered message history of one user.
// Messages are append-only from the UI's perspective; the only removal is
// the in-flight placeholder when a turn fails.
type Conversation struct {
	Username string     `json:"username"`
	Messages []*Message `json:"messages"`
}

// NewConversation creates an empty conversation for a username.
func NewConversation(username string) *Conversation {
	return &Conversation{
		Username: username,
		Messages: make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// Remove deletes a message by ID. Returns true if a message was removed.
func (c *Conversation) Remove(id string) bool {
	for i, msg := range c.Messages {
		if msg.ID == id {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Streaming returns the message currently being streamed, or nil.
// The invariant is that at most one such message exists.
func (c *Conversation) Streaming() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsStreaming {
			return c.Messages[i]
		}
	}
	return nil
}

// ByID returns a message by its ID, or nil.
func (c *Conversation) ByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone returns a deep copy safe to hand to the renderer while the
// streaming goroutine keeps appending to the original.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		Username: c.Username,
		Messages: make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}
