// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package imagegen provides the image generation screen for the TUI.
//
// The screen takes a prompt and an aspect ratio, calls the image API, and
// keeps a per-user gallery of the results. Terminals cannot display the
// bitmaps inline, so the gallery lists prompts with size and age, and the
// newest image can be exported to a file on disk.
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	imgclient "github.com/jeranaias/lorzz-tui/internal/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/store"
	"github.com/jeranaias/lorzz-tui/internal/telemetry"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
	"github.com/jeranaias/lorzz-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SwitchToChatMsg asks the root model to show the chat screen.
type SwitchToChatMsg struct{}

// GeneratedMsg delivers the outcome of one generation request.
type GeneratedMsg struct {
	Gallery []model.ImageHistoryItem
	Err     error
}

// GalleryClearedMsg confirms the gallery was wiped.
type GalleryClearedMsg struct {
	Err error
}

// ExportedMsg reports an image export to disk.
type ExportedMsg struct {
	Path string
	Err  error
}

// =============================================================================
// IMAGE MODEL
// =============================================================================

// Model is the Bubble Tea model for the image generation screen.
type Model struct {
	theme *styles.Theme

	client   *imgclient.Client
	store    *store.Store
	usage    *telemetry.Recorder
	username string

	prompt     textinput.Model
	spinner    spinner.Model
	ratios     []imgclient.AspectRatio
	ratioIndex int

	gallery    []model.ImageHistoryItem
	generating bool
	statusMsg  string
	errMsg     string

	width  int
	height int
}

// New creates the image screen. client may be nil when no image API key is
// configured; the screen then shows a notice instead of accepting prompts.
func New(theme *styles.Theme, client *imgclient.Client, st *store.Store, usage *telemetry.Recorder, username string) Model {
	prompt := textinput.New()
	prompt.Placeholder = "صف الصورة التي تريدها..."
	prompt.CharLimit = 1024
	prompt.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	gallery, _ := st.LoadImages(username)

	return Model{
		theme:    theme,
		client:   client,
		store:    st,
		usage:    usage,
		username: username,
		prompt:   prompt,
		spinner:  sp,
		ratios:   imgclient.AspectRatios(),
		gallery:  gallery,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Enabled reports whether generation is available.
func (m Model) Enabled() bool {
	return m.client != nil
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = msg.Width - 6
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return SwitchToChatMsg{} }
		case tea.KeyTab:
			m.ratioIndex = (m.ratioIndex + 1) % len(m.ratios)
			return m, nil
		case tea.KeyEnter:
			return m.handleGenerate()
		case tea.KeyCtrlL:
			return m.handleClear()
		case tea.KeyCtrlS:
			return m.handleExport()
		}

	case GeneratedMsg:
		m.generating = false
		if msg.Err != nil {
			m.errMsg = "تعذر توليد الصورة. يرجى المحاولة مرة أخرى."
			return m, nil
		}
		m.errMsg = ""
		m.gallery = msg.Gallery
		m.prompt.SetValue("")
		return m, nil

	case GalleryClearedMsg:
		if msg.Err == nil {
			m.gallery = nil
			m.statusMsg = "تم مسح المعرض"
		}
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.statusMsg = "تعذر حفظ الصورة"
		} else {
			m.statusMsg = "حُفظت في " + msg.Path
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.generating {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.prompt, cmd = m.prompt.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleGenerate starts one generation request.
func (m Model) handleGenerate() (Model, tea.Cmd) {
	if m.client == nil || m.generating {
		return m, nil
	}
	promptText := strings.TrimSpace(m.prompt.Value())
	if promptText == "" {
		return m, nil
	}

	m.generating = true
	m.statusMsg = ""
	m.errMsg = ""
	ratio := m.ratios[m.ratioIndex]

	client := m.client
	st := m.store
	usage := m.usage
	username := m.username
	gallery := m.gallery

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		started := time.Now()
		uri, err := client.Generate(context.Background(), promptText, ratio)
		if usage != nil {
			usage.RecordImage(username, string(ratio), time.Since(started), err != nil)
		}
		if err != nil {
			return GeneratedMsg{Err: err}
		}

		updated := model.PrependImage(gallery, model.NewImageHistoryItem(promptText, uri, string(ratio)))
		if err := st.SaveImages(username, updated); err != nil {
			// The generated image still shows for this session; only its
			// persistence failed.
			log.Printf("imagegen: failed to persist gallery for %q: %v", username, err)
		}
		return GeneratedMsg{Gallery: updated}
	})
}

// handleClear wipes the persisted gallery.
func (m Model) handleClear() (Model, tea.Cmd) {
	st := m.store
	username := m.username
	return m, func() tea.Msg {
		return GalleryClearedMsg{Err: st.ClearImages(username)}
	}
}

// handleExport writes the newest image to the working directory.
func (m Model) handleExport() (Model, tea.Cmd) {
	if len(m.gallery) == 0 {
		return m, nil
	}
	item := m.gallery[0]
	return m, func() tea.Msg {
		path, err := exportDataURI(item)
		return ExportedMsg{Path: path, Err: err}
	}
}

// exportDataURI decodes a gallery item to an image file on disk.
func exportDataURI(item model.ImageHistoryItem) (string, error) {
	payload := item.DataURI
	ext := ".jpg"
	if strings.HasPrefix(payload, "data:image/png") {
		ext = ".png"
	}
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	name := "lorzz-" + item.CreatedAt.Format("20060102-150405") + ext
	path := filepath.Join(".", name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	header := m.theme.Title.Render("توليد الصور") + " " +
		m.theme.Hint.Render("— "+m.username)

	if m.client == nil {
		notice := m.theme.Error.Render("مفتاح واجهة الصور غير مهيأ؛ هذه الشاشة معطلة.")
		hint := m.theme.Hint.Render("esc: عودة إلى المحادثة")
		return lipgloss.JoinVertical(lipgloss.Left, header, "", notice, "", hint)
	}

	input := m.theme.InputBox.Width(m.width - 2).Render(m.prompt.View())
	ratios := m.renderRatios()

	status := ""
	switch {
	case m.generating:
		status = m.spinner.View() + m.theme.Subtitle.Render(" جارٍ توليد الصورة...")
	case m.errMsg != "":
		status = m.theme.Error.Render(m.errMsg)
	case m.statusMsg != "":
		status = m.theme.Hint.Render(m.statusMsg)
	}

	hint := m.theme.Hint.Render("enter: توليد  •  tab: نسبة الأبعاد  •  ctrl+s: حفظ الأحدث  •  ctrl+l: مسح  •  esc: محادثة")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		input,
		ratios,
		status,
		"",
		m.renderGallery(),
		"",
		hint,
	)
}

// renderRatios renders the aspect ratio selector.
func (m Model) renderRatios() string {
	parts := make([]string, 0, len(m.ratios))
	for i, r := range m.ratios {
		label := string(r)
		if i == m.ratioIndex {
			parts = append(parts, m.theme.Selected.Render("["+label+"]"))
		} else {
			parts = append(parts, m.theme.Hint.Render(" "+label+" "))
		}
	}
	return m.theme.Subtitle.Render("النسبة: ") + strings.Join(parts, " ")
}

// renderGallery lists the saved images, newest first.
func (m Model) renderGallery() string {
	if len(m.gallery) == 0 {
		return m.theme.Hint.Render("المعرض فارغ بعد.")
	}

	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("المعرض (%d/%d):", len(m.gallery), model.MaxImageHistory)))

	shown := len(m.gallery)
	if max := m.height - 14; max > 0 && shown > max {
		shown = max
	}
	for i := 0; i < shown; i++ {
		item := m.gallery[i]
		size := len(item.DataURI) * 3 / 4 / 1024
		line := fmt.Sprintf("%2d. %s  %s  %dKB  %s",
			i+1,
			item.AspectRatio,
			item.CreatedAt.Format("01-02 15:04"),
			size,
			util.TruncateWidth(item.Prompt, m.width-30),
		)
		b.WriteString("\n" + m.theme.Subtitle.Render(line))
	}
	if shown < len(m.gallery) {
		b.WriteString("\n" + m.theme.Hint.Render(fmt.Sprintf("… و%d أخرى", len(m.gallery)-shown)))
	}
	return b.String()
}
