// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the Lip Gloss styles shared across screens.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Timestamp       lipgloss.Style
	Source          lipgloss.Style

	InputBox  lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
}

// NewTheme builds the theme. name is "dark" or "light"; it overrides
// background detection so piped output still renders consistently.
func NewTheme(name string) *Theme {
	lipgloss.SetColorProfile(termenv.ColorProfile())
	lipgloss.SetHasDarkBackground(name != "light")

	return &Theme{
		Title: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		Subtitle: lipgloss.NewStyle().
			Foreground(TextSecondary),
		Hint: lipgloss.NewStyle().
			Foreground(TextMuted),
		Error: lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(Emerald),

		UserLabel: lipgloss.NewStyle().
			Foreground(UserBubbleBorder).
			Bold(true),
		AssistantLabel: lipgloss.NewStyle().
			Foreground(AssistantBubbleBorder).
			Bold(true),
		UserBubble: lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1),
		AssistantBubble: lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(AssistantBubbleBorder).
			Padding(0, 1),
		Timestamp: lipgloss.NewStyle().
			Foreground(TextMuted),
		Source: lipgloss.NewStyle().
			Foreground(LinkColor).
			Underline(true),

		InputBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(Overlay).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
	}
}

// Reload rebuilds the theme in place, so every screen holding the pointer
// picks up the new palette on its next render.
func (t *Theme) Reload(name string) {
	*t = *NewTheme(name)
}
