// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the HTTP client for the hosted generative
// language API used by the chat screen.
//
// A Session pins the configuration every Lorzz conversation runs with: the
// assistant persona as system instruction, fixed sampling parameters, safety
// thresholds set to not pre-emptively block any category, and the web-search
// grounding tool. Turns are streamed over the SSE variant of the generate
// endpoint and delivered chunk by chunk through a callback, together with
// any web citation sources the API grounds the reply on.
package gemini
