// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages
// and the generated-image gallery.
//
// A Message is sent either by the human user (identified by a display name
// chosen at login) or by the fixed assistant identity. While an assistant
// reply is still arriving its IsStreaming flag is set; a conversation never
// holds more than one streaming message at a time.
package model
