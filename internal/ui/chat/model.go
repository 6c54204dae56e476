// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorzz-tui/internal/chat"
	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat screen.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streamed reply
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Session
	manager      *chat.Manager
	conversation *model.Conversation
	updates      <-chan chat.Update

	// Staged file for the next message
	pendingAttachment *model.Attachment

	// Markdown rendering
	renderer      *glamour.TermRenderer
	markdownWidth int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Transient status line
	statusMsg string
}

// New creates the chat screen bound to an initialized session manager.
// markdownWidth of 0 follows the terminal width.
func New(theme *styles.Theme, manager *chat.Manager, markdownWidth int) Model {
	input := textinput.New()
	input.Placeholder = "اكتب رسالتك هنا..."
	input.CharLimit = 4096
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		theme:         theme,
		manager:       manager,
		conversation:  manager.Messages(),
		markdownWidth: markdownWidth,
		input:         input,
		spinner:       sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Refresh re-reads the conversation from the manager, for when the root
// model re-enters this screen.
func (m *Model) Refresh() {
	m.conversation = m.manager.Messages()
	if m.ready {
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
	}
}

// rebuildRenderer recreates the markdown renderer for the current width.
func (m *Model) rebuildRenderer() {
	width := m.markdownWidth
	if width <= 0 || width > m.width-4 {
		width = m.width - 4
	}
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		m.renderer = renderer
	}
}
