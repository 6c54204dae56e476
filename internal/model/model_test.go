// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Sara", "hello", nil)

	if msg.ID == "" {
		t.Error("Expected non-empty ID")
	}
	if msg.Sender != "Sara" {
		t.Errorf("Sender = %q, want %q", msg.Sender, "Sara")
	}
	if msg.Text != "hello" {
		t.Errorf("Text = %q, want %q", msg.Text, "hello")
	}
	if msg.IsStreaming {
		t.Error("User message should not be streaming")
	}
	if msg.IsAssistant() {
		t.Error("User message should not be from the assistant")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestNewAssistantPlaceholder(t *testing.T) {
	msg := NewAssistantPlaceholder()

	if !msg.IsStreaming {
		t.Error("Placeholder should be streaming")
	}
	if msg.Text != "" {
		t.Errorf("Placeholder text = %q, want empty", msg.Text)
	}
	if msg.Sender != AssistantName {
		t.Errorf("Sender = %q, want %q", msg.Sender, AssistantName)
	}
}

func TestMessage_AppendChunk(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.AppendChunk("Hello")
	msg.AppendChunk(", world")

	if msg.Text != "Hello, world" {
		t.Errorf("Text = %q, want %q", msg.Text, "Hello, world")
	}

	// After finalize, text is immutable
	msg.FinalizeStream(nil)
	msg.AppendChunk("!!!")
	if msg.Text != "Hello, world" {
		t.Errorf("Text after finalize = %q, want %q", msg.Text, "Hello, world")
	}
}

func TestMessage_FinalizeStream(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.AppendChunk("answer")
	msg.FinalizeStream(nil)

	if msg.IsStreaming {
		t.Error("Expected streaming flag cleared")
	}
	if msg.Sources != nil {
		t.Error("Expected sources absent when none were produced")
	}

	// With sources
	msg2 := NewAssistantPlaceholder()
	msg2.FinalizeStream([]Source{{URI: "https://a.example", Title: "A"}})
	if len(msg2.Sources) != 1 {
		t.Fatalf("Sources len = %d, want 1", len(msg2.Sources))
	}
}

func TestNewWelcomeMessage(t *testing.T) {
	msg := NewWelcomeMessage("Sara")
	if msg.ID != WelcomeMessageID {
		t.Errorf("ID = %q, want %q", msg.ID, WelcomeMessageID)
	}
	if msg.Sender != AssistantName {
		t.Errorf("Sender = %q, want %q", msg.Sender, AssistantName)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_Append(t *testing.T) {
	conv := NewConversation("Sara")
	if !conv.IsEmpty() {
		t.Error("New conversation should be empty")
	}

	conv.Append(NewUserMessage("Sara", "hi", nil))
	conv.Append(NewAssistantPlaceholder())

	if conv.Len() != 2 {
		t.Errorf("Len = %d, want 2", conv.Len())
	}
	if conv.Last() == nil || !conv.Last().IsStreaming {
		t.Error("Last message should be the streaming placeholder")
	}
}

func TestConversation_SingleStreaming(t *testing.T) {
	conv := NewConversation("Sara")
	conv.Append(NewUserMessage("Sara", "one", nil))
	placeholder := NewAssistantPlaceholder()
	conv.Append(placeholder)

	streamingCount := 0
	for _, msg := range conv.Messages {
		if msg.IsStreaming {
			streamingCount++
		}
	}
	if streamingCount != 1 {
		t.Errorf("Streaming messages = %d, want 1", streamingCount)
	}
	if conv.Streaming() != placeholder {
		t.Error("Streaming() should return the placeholder")
	}

	placeholder.FinalizeStream(nil)
	if conv.Streaming() != nil {
		t.Error("Streaming() should return nil after finalize")
	}
}

func TestConversation_UniqueIDs(t *testing.T) {
	conv := NewConversation("Sara")
	for i := 0; i < 20; i++ {
		conv.Append(NewUserMessage("Sara", strconv.Itoa(i), nil))
	}

	seen := make(map[string]bool)
	for _, msg := range conv.Messages {
		if seen[msg.ID] {
			t.Fatalf("Duplicate message ID %q", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestConversation_Remove(t *testing.T) {
	conv := NewConversation("Sara")
	msg := NewAssistantPlaceholder()
	conv.Append(msg)

	if !conv.Remove(msg.ID) {
		t.Error("Remove should report true for existing message")
	}
	if conv.Remove("missing") {
		t.Error("Remove should report false for missing message")
	}
	if conv.Len() != 0 {
		t.Errorf("Len after remove = %d, want 0", conv.Len())
	}
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation("Sara")
	msg := NewAssistantPlaceholder()
	msg.AppendChunk("partial")
	conv.Append(msg)

	clone := conv.Clone()
	msg.AppendChunk(" more")

	if clone.Messages[0].Text != "partial" {
		t.Errorf("Clone text = %q, want %q", clone.Messages[0].Text, "partial")
	}
}

// =============================================================================
// IMAGE HISTORY TESTS
// =============================================================================

func TestPrependImage_NewestFirst(t *testing.T) {
	var items []ImageHistoryItem
	items = PrependImage(items, NewImageHistoryItem("first", "data:image/jpeg;base64,a", "1:1"))
	items = PrependImage(items, NewImageHistoryItem("second", "data:image/jpeg;base64,b", "16:9"))

	if items[0].Prompt != "second" {
		t.Errorf("Head prompt = %q, want %q", items[0].Prompt, "second")
	}
}

func TestPrependImage_Cap(t *testing.T) {
	var items []ImageHistoryItem
	for i := 0; i <= MaxImageHistory; i++ {
		items = PrependImage(items, NewImageHistoryItem(strconv.Itoa(i), "data:image/jpeg;base64,x", "1:1"))
	}

	if len(items) != MaxImageHistory {
		t.Fatalf("Len = %d, want %d", len(items), MaxImageHistory)
	}
	// The oldest entry (prompt "0") was evicted
	if items[len(items)-1].Prompt != "1" {
		t.Errorf("Tail prompt = %q, want %q", items[len(items)-1].Prompt, "1")
	}
	if items[0].Prompt != strconv.Itoa(MaxImageHistory) {
		t.Errorf("Head prompt = %q, want %q", items[0].Prompt, strconv.Itoa(MaxImageHistory))
	}
}
