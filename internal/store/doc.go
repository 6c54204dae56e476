// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists per-user application state as JSON files under
// the Lorzz data directory.
//
// Every save is a whole-value overwrite via an atomic temp-file rename, so
// a crash leaves either the previous or the new complete file on disk. A
// missing or unreadable file reads as absent state, never as an error the
// user has to deal with.
package store
