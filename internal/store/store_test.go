// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/lorzz-tui/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation("Sara")
	conv.Append(model.NewWelcomeMessage("Sara"))
	conv.Append(model.NewUserMessage("Sara", "hello", nil))

	if err := s.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	loaded, err := s.LoadConversation("Sara")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if loaded == nil || loaded.Len() != 2 {
		t.Fatalf("Loaded = %+v, want 2 messages", loaded)
	}
	if loaded.Messages[1].Text != "hello" {
		t.Errorf("Text = %q, want %q", loaded.Messages[1].Text, "hello")
	}
}

func TestConversation_Missing(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.LoadConversation("nobody")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if conv != nil {
		t.Errorf("Expected nil for missing conversation, got %+v", conv)
	}
}

func TestConversation_CorruptReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)

	dir := s.userDir("Sara")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, conversationFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	conv, err := s.LoadConversation("Sara")
	if err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if conv != nil {
		t.Error("Corrupt file should read as absent")
	}
}

func TestConversation_PerUserIsolation(t *testing.T) {
	s := newTestStore(t)

	convA := model.NewConversation("Sara")
	convA.Append(model.NewUserMessage("Sara", "from sara", nil))
	convB := model.NewConversation("Omar")
	convB.Append(model.NewUserMessage("Omar", "from omar", nil))

	if err := s.SaveConversation(convA); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveConversation(convB); err != nil {
		t.Fatal(err)
	}

	loaded, _ := s.LoadConversation("Sara")
	if loaded.Messages[0].Text != "from sara" {
		t.Errorf("Sara's history = %q", loaded.Messages[0].Text)
	}
}

func TestConversation_EphemeralFieldsNotPersisted(t *testing.T) {
	s := newTestStore(t)

	conv := model.NewConversation("Sara")
	att := &model.Attachment{Name: "photo.png", MIMEType: "image/png", Path: "/tmp/photo.png"}
	conv.Append(model.NewUserMessage("Sara", "look", att))
	placeholder := model.NewAssistantPlaceholder()
	placeholder.AppendChunk("partial")
	placeholder.FinalizeStream(nil)
	conv.Append(placeholder)

	if err := s.SaveConversation(conv); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(s.userDir("Sara"), conversationFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "/tmp/photo.png") {
		t.Error("Attachment path leaked into the persisted file")
	}

	loaded, _ := s.LoadConversation("Sara")
	if loaded.Messages[0].Attachment == nil || loaded.Messages[0].Attachment.Name != "photo.png" {
		t.Error("Attachment name and type should survive reload")
	}
	if loaded.Messages[0].Attachment.Path != "" {
		t.Errorf("Path = %q after reload, want empty", loaded.Messages[0].Attachment.Path)
	}
	if loaded.Messages[1].IsStreaming {
		t.Error("Streaming flag should not survive reload")
	}
}

func TestUserDir_SanitizesNames(t *testing.T) {
	s := newTestStore(t)

	dir := s.userDir("../evil/name")
	if !strings.HasPrefix(dir, filepath.Join(s.BaseDir(), "users")) {
		t.Errorf("Dir = %q escaped the users root", dir)
	}
	if s.userDir("") != s.userDir("  ") {
		t.Error("Blank names should map to the same directory")
	}
}

// =============================================================================
// IMAGE HISTORY TESTS
// =============================================================================

func TestImages_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	items := []model.ImageHistoryItem{
		model.NewImageHistoryItem("a fox", "data:image/jpeg;base64,aaa", "1:1"),
	}
	if err := s.SaveImages("Sara", items); err != nil {
		t.Fatalf("SaveImages failed: %v", err)
	}

	loaded, err := s.LoadImages("Sara")
	if err != nil {
		t.Fatalf("LoadImages failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Prompt != "a fox" {
		t.Errorf("Loaded = %+v", loaded)
	}
}

func TestImages_MissingAndClear(t *testing.T) {
	s := newTestStore(t)

	if items, err := s.LoadImages("Sara"); err != nil || items != nil {
		t.Errorf("Missing gallery: items=%v err=%v", items, err)
	}

	s.SaveImages("Sara", []model.ImageHistoryItem{
		model.NewImageHistoryItem("x", "data:image/jpeg;base64,x", "1:1"),
	})
	if err := s.ClearImages("Sara"); err != nil {
		t.Fatalf("ClearImages failed: %v", err)
	}
	if items, _ := s.LoadImages("Sara"); items != nil {
		t.Error("Gallery should be empty after clear")
	}

	// Clearing an already-empty gallery is fine
	if err := s.ClearImages("Sara"); err != nil {
		t.Errorf("Second clear failed: %v", err)
	}
}

func TestImages_LoadEnforcesCap(t *testing.T) {
	s := newTestStore(t)

	// A file written by an older build could exceed the cap.
	over := make([]model.ImageHistoryItem, model.MaxImageHistory+5)
	for i := range over {
		over[i] = model.NewImageHistoryItem("p", "data:image/jpeg;base64,x", "1:1")
	}
	data, _ := json.Marshal(over)
	dir := s.userDir("Sara")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, imagesFile), data, 0644)

	loaded, _ := s.LoadImages("Sara")
	if len(loaded) != model.MaxImageHistory {
		t.Errorf("Len = %d, want %d", len(loaded), model.MaxImageHistory)
	}
}

// =============================================================================
// LAST USER TESTS
// =============================================================================

func TestLastUser(t *testing.T) {
	s := newTestStore(t)

	if got := s.LastUser(); got != "" {
		t.Errorf("LastUser = %q before any login", got)
	}
	if err := s.SetLastUser("Sara"); err != nil {
		t.Fatalf("SetLastUser failed: %v", err)
	}
	if got := s.LastUser(); got != "Sara" {
		t.Errorf("LastUser = %q, want %q", got, "Sara")
	}
}
