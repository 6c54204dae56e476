// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lorzz-tui/internal/chat"
	"github.com/jeranaias/lorzz-tui/internal/model"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildRenderer()

		headerHeight := 1
		footerHeight := 4
		if !m.ready {
			m.viewport = newViewport(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.Width = msg.Width - 6
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return m.handleSubmit()
		case tea.KeyEsc:
			m.input.SetValue("")
			m.pendingAttachment = nil
			m.statusMsg = ""
			return m, nil
		}

	case StreamUpdateMsg:
		m.conversation = msg.Update.Conversation
		if msg.Update.Done {
			m.state = StateReady
		}
		if m.ready {
			m.viewport.SetContent(m.renderConversation())
			m.viewport.GotoBottom()
		}
		// Keep listening until the channel closes.
		return m, waitForUpdate(m.updates)

	case StreamClosedMsg:
		m.state = StateReady
		m.updates = nil
		return m, nil

	case AttachmentSetMsg:
		if msg.Err != nil {
			m.statusMsg = "تعذر إرفاق الملف"
		} else {
			m.statusMsg = "📎 " + msg.Name
		}
		return m, nil
	}

	if m.state == StateStreaming {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// =============================================================================
// SUBMIT HANDLING
// =============================================================================

// handleSubmit routes slash commands and starts a streamed turn.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	switch {
	case text == "/image":
		m.input.SetValue("")
		return m, func() tea.Msg { return SwitchToImagesMsg{} }

	case strings.HasPrefix(text, "/attach "):
		path := strings.TrimSpace(strings.TrimPrefix(text, "/attach "))
		m.input.SetValue("")
		return m.stageAttachment(path)
	}

	attachment := m.pendingAttachment
	updates, err := m.manager.SendMessage(context.Background(), text, attachment)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			// Nothing to send; ignore.
		case errors.Is(err, chat.ErrTurnInFlight):
			m.statusMsg = "انتظر اكتمال الرد الحالي"
		default:
			m.statusMsg = "تعذر إرسال الرسالة"
		}
		return m, nil
	}

	m.input.SetValue("")
	m.pendingAttachment = nil
	m.statusMsg = ""
	m.state = StateStreaming
	m.updates = updates
	m.conversation = m.manager.Messages()
	if m.ready {
		m.viewport.SetContent(m.renderConversation())
		m.viewport.GotoBottom()
	}
	return m, tea.Batch(m.spinner.Tick, waitForUpdate(updates))
}

// stageAttachment validates a file path and stages it for the next send.
func (m Model) stageAttachment(path string) (Model, tea.Cmd) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil {
			err = errors.New("path is a directory")
		}
		return m, func() tea.Msg { return AttachmentSetMsg{Err: err} }
	}

	name := filepath.Base(path)
	m.pendingAttachment = &model.Attachment{
		Name:     name,
		MIMEType: mimeTypeFor(path),
		Path:     path,
	}
	return m, func() tea.Msg { return AttachmentSetMsg{Name: name} }
}

func mimeTypeFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForUpdate blocks for the next update from an in-flight turn.
func waitForUpdate(ch <-chan chat.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamUpdateMsg{Update: update}
	}
}
