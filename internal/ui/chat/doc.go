// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen for the TUI.
//
// The screen renders the conversation in a scrollable viewport above a
// single-line input. While a turn streams, snapshots from the session
// manager replace the rendered conversation chunk by chunk; the input
// stays visible but submissions are rejected until the turn settles.
package chat
