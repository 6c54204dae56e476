// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"net/http"

	"github.com/jeranaias/lorzz-tui/internal/gemini"
)

// =============================================================================
// MANAGER ERRORS
// =============================================================================

var (
	// ErrNotInitialized is returned when a turn is attempted before login.
	ErrNotInitialized = errors.New("chat manager not initialized")

	// ErrEmptyMessage is returned for a whitespace-only message with no file.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTurnInFlight is returned when a turn is already streaming.
	// Overlapping sends are rejected, never queued.
	ErrTurnInFlight = errors.New("a turn is already in flight")
)

// =============================================================================
// USER-FACING ERROR CLASSIFICATION
// =============================================================================

// User-facing failure texts, in the product language.
const (
	errTextNetwork     = "فشل الاتصال بالشبكة. يرجى التحقق من اتصالك بالإنترنت والمحاولة مرة أخرى."
	errTextBadRequest  = "حدث خطأ أثناء معالجة طلبك. يرجى المحاولة مرة أخرى."
	errTextRateLimited = "لقد أرسلت طلبات كثيرة جدًا. يرجى الانتظار قليلاً ثم المحاولة مرة أخرى."
	errTextUnavailable = "الخدمة غير متاحة حاليًا أو تواجه ضغطًا. يرجى المحاولة مرة أخرى لاحقاً."
	errTextGeneric     = "عذراً، حدث خطأ غير متوقع. الرجاء المحاولة مرة أخرى."
)

// ClassifyError maps any turn failure to a human-readable message. It is
// total: every input, including nil, yields exactly one of the fixed texts.
func ClassifyError(err error) string {
	if err == nil {
		return errTextGeneric
	}
	if gemini.IsConnectionError(err) {
		return errTextNetwork
	}

	switch status := gemini.HTTPStatus(err); {
	case status == http.StatusTooManyRequests:
		return errTextRateLimited
	case status >= 400 && status < 500:
		return errTextBadRequest
	case status == http.StatusInternalServerError || status == http.StatusServiceUnavailable:
		return errTextUnavailable
	}
	return errTextGeneric
}
