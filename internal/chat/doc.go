// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the lifecycle of one user's conversation: loading or
// seeding history at login, running streamed turns against the language
// API, and persisting the result after every completed or failed turn.
//
// A turn follows a fixed protocol. The user message and an empty streaming
// placeholder are appended together, chunks accumulate into the placeholder
// as they arrive, and citation sources are deduplicated by URI in
// first-seen order. On success the placeholder is finalized and the history
// saved; on failure the placeholder is removed and replaced by a
// human-readable error message, which is saved too, so errors survive a
// restart the same way replies do. At most one turn may be in flight; an
// overlapping send is rejected, never queued.
package chat
