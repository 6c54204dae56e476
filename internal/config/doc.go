// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for lorzz.
//
// Configuration lives in ~/.lorzz/config.toml with sensible defaults,
// environment variable overrides, and validation. A file watcher can
// reload the configuration live while the application runs.
//
// Precedence, lowest to highest:
//   - Built-in defaults
//   - ~/.lorzz/config.toml
//   - Environment variables (GEMINI_API_KEY, LORZZ_*)
package config
