// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAspectRatio_Valid(t *testing.T) {
	for _, r := range AspectRatios() {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	if AspectRatio("4:3").Valid() {
		t.Error("4:3 should not be valid")
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&ClientConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerate_Envelope(t *testing.T) {
	var gotRequest predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		json.NewDecoder(r.Body).Decode(&gotRequest)
		json.NewEncoder(w).Encode(predictResponse{
			Predictions: []prediction{{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString([]byte("img")),
				MimeType:           "image/jpeg",
			}},
		})
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	uri, err := client.Generate(context.Background(), "a red fox", RatioLandscape)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("URI = %q, want data URI prefix", uri)
	}
	if gotRequest.Parameters.AspectRatio != "16:9" {
		t.Errorf("AspectRatio = %q, want 16:9", gotRequest.Parameters.AspectRatio)
	}
	if gotRequest.Parameters.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", gotRequest.Parameters.SampleCount)
	}
}

func TestGenerate_EnvelopeNoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{})
	}))
	defer server.Close()

	client, _ := NewClient(&ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "anything", RatioSquare)
	if !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
}

func TestGenerate_EnvelopeAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"prompt rejected"}}`))
	}))
	defer server.Close()

	client, _ := NewClient(&ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "anything", RatioSquare)
	if err == nil || !strings.Contains(err.Error(), "prompt rejected") {
		t.Errorf("Error = %v, want envelope message", err)
	}
}

func TestGenerate_Binary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req binaryRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Width != 768 || req.Height != 1344 {
			t.Errorf("Dimensions = %dx%d, want 768x1344", req.Width, req.Height)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	client, _ := NewClient(&ClientConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Provider: ProviderBinary,
	})

	uri, err := client.Generate(context.Background(), "a tall tower", RatioPortrait)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("URI = %q, want png data URI", uri)
	}
}

func TestGenerate_Validation(t *testing.T) {
	client, _ := NewClient(&ClientConfig{APIKey: "test-key"})

	if _, err := client.Generate(context.Background(), "  ", RatioSquare); err == nil {
		t.Error("Expected error for empty prompt")
	}
	if _, err := client.Generate(context.Background(), "ok", AspectRatio("2:1")); !errors.Is(err, ErrInvalidAspectRatio) {
		t.Errorf("Expected ErrInvalidAspectRatio, got %v", err)
	}
}
