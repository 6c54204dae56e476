// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the hosted generative language API.
package gemini

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Part is one piece of a content turn: either text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded binary bytes with their MIME type.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content is one turn of the conversation as the API sees it.
// Role is "user" or "model".
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig holds the sampling parameters for a session.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// SafetySetting sets the block threshold for one harm category.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// Tool enables a server-side augmentation. Only web search is used here.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

// GoogleSearch enables grounding replies in web search results.
type GoogleSearch struct{}

// generateRequest is the request body for :streamGenerateContent.
type generateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting   `json:"safetySettings,omitempty"`
	Tools             []Tool            `json:"tools,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// generateResponse is one streamed event from :streamGenerateContent.
type generateResponse struct {
	Candidates []candidate   `json:"candidates"`
	Error      *apiErrorBody `json:"error"`
}

type candidate struct {
	Content           *Content           `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	Web *webSource `json:"web"`
}

type webSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// apiError is the JSON error envelope returned on non-200 responses.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// =============================================================================
// STREAMING TYPES
// =============================================================================

// WebSource is a citation reference carried by a stream chunk.
type WebSource struct {
	URI   string
	Title string
}

// StreamChunk is a single increment of a streamed reply.
type StreamChunk struct {
	// Text is the incremental reply text in this chunk (may be empty).
	Text string

	// Sources are citation references newly observed in this chunk.
	Sources []WebSource
}

// StreamCallback is called for each chunk received during streaming, in
// arrival order, from the goroutine driving the stream.
type StreamCallback func(chunk StreamChunk)
