// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL, an alternative to the full
// TUI for dumb terminals and scripting. Replies stream to stdout as they
// arrive and are re-rendered as markdown once complete.
package cli
