// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxImageHistory caps the per-user gallery. Inserting beyond the cap
// evicts the oldest entries.
const MaxImageHistory = 50

// =============================================================================
// IMAGE HISTORY
// =============================================================================

// ImageHistoryItem is one generated image in the per-user gallery.
// DataURI is a displayable data: URI holding the image payload.
type ImageHistoryItem struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	DataURI     string    `json:"imageDataUrl"`
	AspectRatio string    `json:"aspectRatio"`
	CreatedAt   time.Time `json:"timestamp"`
}

// NewImageHistoryItem creates a gallery entry for a generated image.
func NewImageHistoryItem(prompt, dataURI, aspectRatio string) ImageHistoryItem {
	return ImageHistoryItem{
		ID:          uuid.NewString(),
		Prompt:      prompt,
		DataURI:     dataURI,
		AspectRatio: aspectRatio,
		CreatedAt:   time.Now(),
	}
}

// PrependImage inserts an item at the head (newest first) and enforces the
// MaxImageHistory cap by dropping the tail.
func PrependImage(items []ImageHistoryItem, item ImageHistoryItem) []ImageHistoryItem {
	items = append([]ImageHistoryItem{item}, items...)
	if len(items) > MaxImageHistory {
		items = items[:MaxImageHistory]
	}
	return items
}
