// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the hosted generative language API.
package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses the server-sent-events form of the generate endpoint.
// Each event is a "data: {json}" line carrying a partial response.
type StreamReader struct {
	scanner *bufio.Scanner
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	// Single SSE events can carry large text parts.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &StreamReader{scanner: scanner}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream is complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return &ClientError{Type: ErrTypeTimeout, Message: "stream cancelled", Cause: ctx.Err()}
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if chunk != nil {
				callback(*chunk)
			}
		}
	}
}

// readChunk reads lines until one SSE data event is parsed.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
			}
			return nil, io.EOF
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			// Keep-alive, comments and event separators are skipped.
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var response generateResponse
		if err := json.Unmarshal([]byte(payload), &response); err != nil {
			// Skip malformed events rather than killing the stream.
			continue
		}

		if response.Error != nil {
			return nil, &ClientError{
				Type:    ErrTypeHTTP,
				Status:  response.Error.Code,
				Message: response.Error.Message,
			}
		}

		chunk := s.buildChunk(&response)
		if chunk == nil {
			continue
		}
		return chunk, nil
	}
}

// buildChunk extracts text and citation sources from one parsed event.
// Returns nil when the event carries neither.
func (s *StreamReader) buildChunk(response *generateResponse) *StreamChunk {
	if len(response.Candidates) == 0 {
		return nil
	}
	cand := response.Candidates[0]

	chunk := &StreamChunk{}

	if cand.Content != nil {
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		chunk.Text = text.String()
	}

	if cand.GroundingMetadata != nil {
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc.Web == nil || gc.Web.URI == "" {
				continue
			}
			title := gc.Web.Title
			if title == "" {
				title = gc.Web.URI
			}
			chunk.Sources = append(chunk.Sources, WebSource{URI: gc.Web.URI, Title: title})
		}
	}

	if chunk.Text == "" && len(chunk.Sources) == 0 {
		return nil
	}

	if chunk.Text != "" {
		s.accumulator.WriteString(chunk.Text)
	}
	s.chunkCount++
	return chunk
}

// Accumulated returns all reply text received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of content chunks received.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}
