// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry keeps a local usage log in a SQLite database under the
// data directory. Nothing leaves the machine; the log exists so a user can
// inspect their own chat and image activity over time.
//
// Recording is best-effort throughout: a broken or locked database never
// interferes with a running turn.
package telemetry
