// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the login screen for the TUI.
//
// Login is identification only: the user picks a display name that selects
// which saved history to open. There is no password and no account.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

// SubmittedMsg carries the chosen display name to the root model.
type SubmittedMsg struct {
	Username string
}

// =============================================================================
// LOGIN MODEL
// =============================================================================

// Model is the Bubble Tea model for the login screen.
type Model struct {
	theme *styles.Theme
	input textinput.Model

	width  int
	height int
	errMsg string
}

// New creates the login screen. lastUser, when non-empty, prefills the
// name field so a returning user can just press enter.
func New(theme *styles.Theme, lastUser string) Model {
	input := textinput.New()
	input.Placeholder = "اسمك"
	input.CharLimit = 64
	input.Width = 32
	input.SetValue(lastUser)
	input.Focus()

	return Model{
		theme: theme,
		input: input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter {
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				m.errMsg = "الرجاء إدخال اسمك للمتابعة"
				return m, nil
			}
			m.errMsg = ""
			return m, func() tea.Msg { return SubmittedMsg{Username: name} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	title := m.theme.Title.Render("Lorzz AI")
	subtitle := m.theme.Subtitle.Render("مساعدك الذكي الفائق")
	prompt := m.theme.Subtitle.Render("من فضلك، أدخل اسمك:")
	box := m.theme.InputBox.Render(m.input.View())
	hint := m.theme.Hint.Render("enter: دخول  •  ctrl+c: خروج")

	parts := []string{title, subtitle, "", prompt, box}
	if m.errMsg != "" {
		parts = append(parts, m.theme.Error.Render(m.errMsg))
	}
	parts = append(parts, "", hint)

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	if m.width == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
