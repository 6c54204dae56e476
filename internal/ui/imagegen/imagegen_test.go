// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imagegen

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	imgclient "github.com/jeranaias/lorzz-tui/internal/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/store"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

func TestGenerate_SaveFailureStillShowsImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"predictions":[{"bytesBase64Encoded":%q,"mimeType":"image/jpeg"}]}`,
			base64.StdEncoding.EncodeToString([]byte("img")))
	}))
	defer server.Close()

	client, err := imgclient.NewClient(&imgclient.ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	st, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// A directory in place of the gallery file makes the write fail.
	if err := os.MkdirAll(filepath.Join(st.BaseDir(), "users", "Sara", "images.json"), 0755); err != nil {
		t.Fatal(err)
	}

	m := New(styles.NewTheme("dark"), client, st, nil, "Sara")
	m.prompt.SetValue("a red fox")

	_, cmd := m.handleGenerate()
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch command from handleGenerate")
	}

	var generated *GeneratedMsg
	for _, c := range batch {
		if g, ok := c().(GeneratedMsg); ok {
			generated = &g
		}
	}
	if generated == nil {
		t.Fatal("no generation result in batch")
	}
	if generated.Err != nil {
		t.Fatalf("a persistence failure should not fail the generation: %v", generated.Err)
	}
	if len(generated.Gallery) != 1 {
		t.Fatalf("Gallery length = %d, want 1", len(generated.Gallery))
	}
	if generated.Gallery[0].Prompt != "a red fox" {
		t.Errorf("Prompt = %q, want %q", generated.Gallery[0].Prompt, "a red fox")
	}
}
