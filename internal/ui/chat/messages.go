// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/lorzz-tui/internal/chat"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamUpdateMsg delivers one snapshot from an in-flight turn.
type StreamUpdateMsg struct {
	Update chat.Update
}

// StreamClosedMsg signals that the turn's update channel closed.
type StreamClosedMsg struct{}

// =============================================================================
// NAVIGATION MESSAGES
// =============================================================================

// SwitchToImagesMsg asks the root model to show the image screen.
type SwitchToImagesMsg struct{}

// =============================================================================
// INPUT MESSAGES
// =============================================================================

// AttachmentSetMsg confirms a file was staged for the next message.
type AttachmentSetMsg struct {
	Name string
	Err  error
}
