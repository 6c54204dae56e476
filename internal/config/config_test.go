// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Chat.Model != "gemini-1.5-flash" {
		t.Errorf("Chat.Model = %q", cfg.Chat.Model)
	}
	if cfg.Image.Provider != "envelope" {
		t.Errorf("Image.Provider = %q", cfg.Image.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Chat.BaseURL != Default().Chat.BaseURL {
		t.Errorf("Missing file should yield defaults, got %q", cfg.Chat.BaseURL)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chat]
model = "gemini-2.0-flash"

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Chat.Model != "gemini-2.0-flash" {
		t.Errorf("Chat.Model = %q", cfg.Chat.Model)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
	// Unset values come from defaults
	if cfg.Chat.BaseURL != Default().Chat.BaseURL {
		t.Errorf("Chat.BaseURL = %q, want default", cfg.Chat.BaseURL)
	}
	if cfg.Image.RequestTimeoutSecs != 120 {
		t.Errorf("Image.RequestTimeoutSecs = %d, want 120", cfg.Image.RequestTimeoutSecs)
	}
}

func TestLoadFromPath_InvalidRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[image]
provider = "carrier-pigeon"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("Expected validation error for unknown provider")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "chat-key")
	t.Setenv("LORZZ_CHAT_MODEL", "gemini-2.0-pro")
	t.Setenv("LORZZ_IMAGE_API_KEY", "")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Chat.APIKey != "chat-key" {
		t.Errorf("Chat.APIKey = %q", cfg.Chat.APIKey)
	}
	if cfg.Chat.Model != "gemini-2.0-pro" {
		t.Errorf("Chat.Model = %q", cfg.Chat.Model)
	}
	// Image key falls back to the chat key
	if cfg.Image.APIKey != "chat-key" {
		t.Errorf("Image.APIKey = %q, want chat key fallback", cfg.Image.APIKey)
	}
	if !cfg.HasImageKey() {
		t.Error("HasImageKey should be true with a fallback key")
	}
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.Model = "gemini-custom"
	cfg.UI.MarkdownWidth = 100

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Chat.Model != "gemini-custom" {
		t.Errorf("Chat.Model = %q", loaded.Chat.Model)
	}
	if loaded.UI.MarkdownWidth != 100 {
		t.Errorf("UI.MarkdownWidth = %d", loaded.UI.MarkdownWidth)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Chat.APIKey = "super-secret-key-1234"

	s := cfg.Redacted()
	if strings.Contains(s, "super-secret") {
		t.Errorf("Redacted leaked the key: %q", s)
	}
	if !strings.Contains(s, "1234") {
		t.Errorf("Redacted should keep the key suffix: %q", s)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveToPath(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := Default()
	updated.Chat.Model = "gemini-reloaded"
	if err := SaveToPath(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Chat.Model != "gemini-reloaded" {
			t.Errorf("Reloaded model = %q", cfg.Chat.Model)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}
