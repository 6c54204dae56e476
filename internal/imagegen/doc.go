// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package imagegen turns text prompts into images through a hosted
// image-generation API.
//
// Two provider response shapes are supported and normalized to the same
// result: an envelope provider returns JSON with base64-encoded image
// bytes inside, a binary provider returns the raw image bytes as the
// response body. Either way the caller receives a self-contained data URI
// ready to persist or hand to a terminal renderer.
package imagegen
