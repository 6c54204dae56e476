// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/util"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  loading..."
	}

	header := m.theme.Title.Render("Lorzz AI") + " " +
		m.theme.Hint.Render("— "+m.manager.Username())

	status := m.statusLine()
	input := m.theme.InputBox.Width(m.width - 2).Render(m.input.View())
	hint := m.theme.Hint.Render("enter: إرسال  •  /image: توليد الصور  •  /attach <ملف>  •  ctrl+c: خروج")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		status,
		input,
		hint,
	)
}

// statusLine renders the spinner or a transient notice.
func (m Model) statusLine() string {
	if m.state == StateStreaming {
		return m.spinner.View() + m.theme.Subtitle.Render(" لورز يفكر...")
	}
	if m.statusMsg != "" {
		return m.theme.Hint.Render(util.TruncateWidth(m.statusMsg, m.width-2))
	}
	return ""
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// renderConversation renders all messages for the viewport.
func (m Model) renderConversation() string {
	if m.conversation == nil || m.conversation.IsEmpty() {
		return m.theme.Hint.Render("\n  ابدأ المحادثة...")
	}

	var b strings.Builder
	for i, msg := range m.conversation.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders one message with label, body, and sources.
func (m Model) renderMessage(msg *model.Message) string {
	label := m.theme.UserLabel
	bubble := m.theme.UserBubble
	if msg.IsAssistant() {
		label = m.theme.AssistantLabel
		bubble = m.theme.AssistantBubble
	}

	header := label.Render(msg.Sender) + " " +
		m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))

	body := msg.Text
	if msg.IsAssistant() && !msg.IsStreaming && m.renderer != nil {
		if rendered, err := m.renderer.Render(msg.Text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	if msg.IsStreaming {
		if body == "" {
			body = m.spinner.View()
		} else {
			body += " ▌"
		}
	}

	width := m.width - 4
	if width > 0 {
		bubble = bubble.MaxWidth(width)
	}
	out := header + "\n" + bubble.Render(body)

	if note := m.renderAttachment(msg.Attachment); note != "" {
		out += "\n" + note
	}
	if sources := m.renderSources(msg.Sources); sources != "" {
		out += "\n" + sources
	}
	return out
}

// renderAttachment renders the file note under a user message.
func (m Model) renderAttachment(att *model.Attachment) string {
	if att == nil {
		return ""
	}
	return m.theme.Hint.Render("📎 " + att.Name + " (" + att.MIMEType + ")")
}

// renderSources renders citation footnotes under an assistant reply.
func (m Model) renderSources(sources []model.Source) string {
	if len(sources) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render("المصادر:"))
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		b.WriteString(fmt.Sprintf("\n  %s %s",
			m.theme.Hint.Render(fmt.Sprintf("[%d]", i+1)),
			m.theme.Source.Render(util.TruncateWidth(title, m.width-8)),
		))
	}
	return b.String()
}
