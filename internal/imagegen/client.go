// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ASPECT RATIOS
// =============================================================================

// AspectRatio selects the output shape of a generated image.
type AspectRatio string

const (
	RatioSquare    AspectRatio = "1:1"
	RatioLandscape AspectRatio = "16:9"
	RatioPortrait  AspectRatio = "9:16"
)

// AspectRatios lists the supported ratios in display order.
func AspectRatios() []AspectRatio {
	return []AspectRatio{RatioSquare, RatioLandscape, RatioPortrait}
}

// Valid reports whether the ratio is one of the supported values.
func (r AspectRatio) Valid() bool {
	switch r {
	case RatioSquare, RatioLandscape, RatioPortrait:
		return true
	}
	return false
}

// Dimensions returns pixel width and height for providers that take
// explicit sizes instead of a ratio string.
func (r AspectRatio) Dimensions() (width, height int) {
	switch r {
	case RatioLandscape:
		return 1344, 768
	case RatioPortrait:
		return 768, 1344
	default:
		return 1024, 1024
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingAPIKey is returned at construction when no credential is
	// configured. The image screen is disabled rather than failing per call.
	ErrMissingAPIKey = errors.New("image API key not configured")

	// ErrNoImage is returned when the provider answered successfully but
	// produced no image, typically a prompt the model refused.
	ErrNoImage = errors.New("provider returned no image")

	// ErrInvalidAspectRatio is returned for a ratio outside the supported set.
	ErrInvalidAspectRatio = errors.New("unsupported aspect ratio")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// ProviderKind selects how the provider returns image bytes.
type ProviderKind string

const (
	// ProviderEnvelope providers answer with JSON carrying base64 bytes.
	ProviderEnvelope ProviderKind = "envelope"

	// ProviderBinary providers answer with raw image bytes as the body.
	ProviderBinary ProviderKind = "binary"
)

// ClientConfig holds configuration options for the image client.
type ClientConfig struct {
	// BaseURL of the API (default: https://generativelanguage.googleapis.com)
	BaseURL string

	// Model name (default: "imagen-3.0-generate-002")
	Model string

	// APIKey is the access credential. Required.
	APIKey string

	// Provider selects the response shape (default: envelope)
	Provider ProviderKind

	// RequestTimeout bounds one generation call (default: 2m)
	RequestTimeout time.Duration
}

// DefaultConfig returns the default image client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://generativelanguage.googleapis.com",
		Model:          "imagen-3.0-generate-002",
		Provider:       ProviderEnvelope,
		RequestTimeout: 2 * time.Minute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client generates images from text prompts.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates an image client, validating that a credential is present.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.Model == "" {
		config.Model = "imagen-3.0-generate-002"
	}
	if config.Provider == "" {
		config.Provider = ProviderEnvelope
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 2 * time.Minute
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}, nil
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// Generate produces one image for the prompt at the requested ratio and
// returns it as a data URI.
func (c *Client) Generate(ctx context.Context, prompt string, ratio AspectRatio) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}
	if !ratio.Valid() {
		return "", ErrInvalidAspectRatio
	}

	switch c.config.Provider {
	case ProviderBinary:
		return c.generateBinary(ctx, prompt, ratio)
	default:
		return c.generateEnvelope(ctx, prompt, ratio)
	}
}

// =============================================================================
// ENVELOPE PROVIDER
// =============================================================================

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio"`
	OutputMimeType string `json:"outputMimeType"`
}

type predictResponse struct {
	Predictions []prediction `json:"predictions"`
	Error       *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

func (c *Client) generateEnvelope(ctx context.Context, prompt string, ratio AspectRatio) (string, error) {
	body, err := json.Marshal(predictRequest{
		Instances: []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{
			SampleCount:    1,
			AspectRatio:    string(ratio),
			OutputMimeType: "image/jpeg",
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.config.BaseURL + "/v1beta/models/" + c.config.Model + ":predict"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return "", fmt.Errorf("image request failed: %s", result.Error.Message)
		}
		return "", fmt.Errorf("image request failed: %s", resp.Status)
	}
	if len(result.Predictions) == 0 || result.Predictions[0].BytesBase64Encoded == "" {
		return "", ErrNoImage
	}

	mime := result.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + result.Predictions[0].BytesBase64Encoded, nil
}

// =============================================================================
// BINARY PROVIDER
// =============================================================================

type binaryRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (c *Client) generateBinary(ctx context.Context, prompt string, ratio AspectRatio) (string, error) {
	width, height := ratio.Dimensions()
	body, err := json.Marshal(binaryRequest{Prompt: prompt, Width: width, Height: height})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image request failed: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", fmt.Errorf("read image bytes: %w", err)
	}
	if len(data) == 0 {
		return "", ErrNoImage
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
