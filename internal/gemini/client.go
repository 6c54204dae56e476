// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the hosted generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the generative language client.
type ClientError struct {
	Type    ErrorType
	Status  int // HTTP status code, 0 when the request never completed
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeHTTP
	ErrTypeInvalidResponse
)

// ErrMissingAPIKey is returned when the client is constructed without a
// credential. Absence of the key is a fatal startup condition for chat.
var ErrMissingAPIKey = errors.New("gemini API key not configured")

// =============================================================================
// SESSION DEFAULTS
// =============================================================================

// SystemInstruction is the fixed assistant persona. It is not user-editable.
const SystemInstruction = `أنت "لورز"، مساعد ذكاء اصطناعي فائق القوة ومتعدد المعارف. مهمتك هي تقديم إجابات شاملة ودقيقة ومبتكرة في جميع المجالات، من العلوم والتكنولوجيا إلى الفنون والتاريخ والفلسفة. استخدم بحث Google بفعالية لضمان أن تكون معلوماتك محدّثة ومدعومة بمصادر موثوقة. كن مبدعًا، ومفيدًا، وقادرًا على الإبهار بمعرفتك الواسعة.`

// defaultGenerationConfig returns the fixed sampling parameters every
// session runs with.
func defaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Temperature:     1,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 8192,
	}
}

// defaultSafetySettings disables pre-emptive blocking for every category.
// Blocked replies surface as empty candidates otherwise, which reads as a
// silent failure to the user.
func defaultSafetySettings() []SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{Category: c, Threshold: "BLOCK_NONE"})
	}
	return settings
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the generative language client.
type ClientConfig struct {
	// BaseURL of the API (default: https://generativelanguage.googleapis.com)
	BaseURL string

	// Model name (default: "gemini-1.5-flash")
	Model string

	// APIKey is the access credential. Required.
	APIKey string

	// StreamTimeout bounds the whole streamed turn (default: 5m)
	StreamTimeout time.Duration

	// RequestsPerMinute paces outgoing turns client-side (default: 30)
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
// The API key is intentionally left empty; callers supply it.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "https://generativelanguage.googleapis.com",
		Model:             "gemini-1.5-flash",
		StreamTimeout:     5 * time.Minute,
		RequestsPerMinute: 30,
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one logical conversation with the API. It accumulates the turn
// history that gives the model context, and pins the fixed configuration.
// A session is not safe for concurrent turns; the chat manager guarantees
// at most one outstanding turn anyway.
type Session struct {
	history          []Content
	system           *Content
	generationConfig *GenerationConfig
	safetySettings   []SafetySetting
	tools            []Tool
}

// History returns the accumulated turn history (completed turns only).
func (s *Session) History() []Content {
	return s.history
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the generative language API.
//
// Example:
//
//	client, err := gemini.NewClient(cfg)
//	session := client.NewSession()
//	err = client.StreamMessage(ctx, session, "hello", nil, func(chunk gemini.StreamChunk) {
//	    ...
//	})
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, validating that a credential is present.
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
		config.Model = "gemini-1.5-flash"
	}
	if config.StreamTimeout == 0 {
		config.StreamTimeout = 5 * time.Minute
	}
	if config.RequestsPerMinute == 0 {
		config.RequestsPerMinute = 30
	}

	return &Client{
		config: config,
		// No client timeout: streaming turns are bounded per request
		// via context in StreamMessage.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), config.RequestsPerMinute),
	}, nil
}

// NewSession opens a fresh conversation bound to the fixed system
// instruction, sampling parameters, non-blocking safety thresholds and the
// web-search tool.
func (c *Client) NewSession() *Session {
	return &Session{
		system: &Content{
			Parts: []Part{{Text: SystemInstruction}},
		},
		generationConfig: defaultGenerationConfig(),
		safetySettings:   defaultSafetySettings(),
		tools:            []Tool{{GoogleSearch: &GoogleSearch{}}},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// STREAMING TURN
// =============================================================================

// Attachment is a file sent inline with a turn.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// StreamMessage sends one user turn and streams the reply through the
// callback. The callback is invoked synchronously in arrival order; the
// stream is finite and not restartable. On success the completed turn is
// recorded into the session history; on failure the session is unchanged.
func (c *Client) StreamMessage(ctx context.Context, session *Session, text string, attachment *Attachment, callback StreamCallback) error {
	if session == nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "nil session"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.StreamTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "rate limiter wait cancelled", Cause: err}
	}

	// Inline data leads the parts, then the prompt text.
	var parts []Part
	if attachment != nil {
		parts = append(parts, Part{InlineData: &InlineData{
			MIMEType: attachment.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(attachment.Data),
		}})
	}
	parts = append(parts, Part{Text: text})
	userTurn := Content{Role: "user", Parts: parts}

	reqBody := generateRequest{
		Contents:          append(append([]Content{}, session.history...), userTurn),
		SystemInstruction: session.system,
		GenerationConfig:  session.generationConfig,
		SafetySettings:    session.safetySettings,
		Tools:             session.tools,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	url := c.config.BaseURL + "/v1beta/models/" + c.config.Model + ":streamGenerateContent?alt=sse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return &ClientError{Type: ErrTypeConnection, Message: "failed to reach the API", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope apiError
		msg := "request failed: " + resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return &ClientError{Type: ErrTypeHTTP, Status: resp.StatusCode, Message: msg}
	}

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, callback); err != nil {
		return err
	}

	// Record the completed turn so the next one carries context.
	session.history = append(session.history, userTurn, Content{
		Role:  "model",
		Parts: []Part{{Text: reader.Accumulated()}},
	})
	return nil
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConnectionError reports whether err means the API was unreachable.
func IsConnectionError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection || clientErr.Type == ErrTypeTimeout
	}
	return false
}

// HTTPStatus extracts the HTTP status from an error, or 0.
func HTTPStatus(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Status
	}
	return 0
}
