// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the root Bubble Tea model for the lorzz TUI.
//
// The root model routes between three screens: login, chat, and image
// generation. Login must complete before the other screens exist; chat
// and images switch back and forth freely afterwards.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lorzz-tui/internal/chat"
	"github.com/jeranaias/lorzz-tui/internal/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/store"
	"github.com/jeranaias/lorzz-tui/internal/telemetry"
	chatui "github.com/jeranaias/lorzz-tui/internal/ui/chat"
	imgui "github.com/jeranaias/lorzz-tui/internal/ui/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/ui/login"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

// Screen identifies the active view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenChat
	ScreenImages
)

// loginDoneMsg reports the outcome of session initialization.
type loginDoneMsg struct {
	username string
	err      error
}

// ConfigReloadedMsg announces a configuration change picked up from disk
// while the app is running.
type ConfigReloadedMsg struct {
	Theme string
}

// =============================================================================
// APP MODEL
// =============================================================================

// Options carries the wired dependencies into the root model.
type Options struct {
	Theme         *styles.Theme
	Store         *store.Store
	Manager       *chat.Manager
	ImageClient   *imagegen.Client // nil disables the image screen
	Usage         *telemetry.Recorder
	MarkdownWidth int
}

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	screen Screen

	login  login.Model
	chat   chatui.Model
	images imgui.Model

	width  int
	height int
}

// NewApp creates the root model starting at the login screen.
func NewApp(opts Options) App {
	return App{
		opts:   opts,
		screen: ScreenLogin,
		login:  login.New(opts.Theme, opts.Store.LastUser()),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.login.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Every screen tracks its own dimensions.
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		cmds = append(cmds, cmd)
		if a.screen != ScreenLogin {
			a.chat, cmd = a.chat.Update(msg)
			cmds = append(cmds, cmd)
			a.images, cmd = a.images.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case login.SubmittedMsg:
		manager := a.opts.Manager
		username := msg.Username
		return a, func() tea.Msg {
			return loginDoneMsg{username: username, err: manager.Initialize(username)}
		}

	case loginDoneMsg:
		if msg.err != nil {
			// Stay on login; the screen shows its own validation errors,
			// anything else is fatal enough to quit over.
			return a, tea.Quit
		}
		a.chat = chatui.New(a.opts.Theme, a.opts.Manager, a.opts.MarkdownWidth)
		a.images = imgui.New(a.opts.Theme, a.opts.ImageClient, a.opts.Store, a.opts.Usage, msg.username)
		a.screen = ScreenChat
		var cmds []tea.Cmd
		cmds = append(cmds, a.chat.Init(), a.images.Init())
		if a.width > 0 {
			size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
			var cmd tea.Cmd
			a.chat, cmd = a.chat.Update(size)
			cmds = append(cmds, cmd)
			a.images, cmd = a.images.Update(size)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case chatui.SwitchToImagesMsg:
		a.screen = ScreenImages
		return a, nil

	case imgui.SwitchToChatMsg:
		a.screen = ScreenChat
		a.chat.Refresh()
		return a, nil

	case ConfigReloadedMsg:
		a.opts.Theme.Reload(msg.Theme)
		return a, nil
	}

	// Streaming updates must reach the chat model even while the image
	// screen is visible, so route by message type before screen.
	switch msg.(type) {
	case chatui.StreamUpdateMsg, chatui.StreamClosedMsg, chatui.AttachmentSetMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd
	case imgui.GeneratedMsg, imgui.GalleryClearedMsg, imgui.ExportedMsg:
		var cmd tea.Cmd
		a.images, cmd = a.images.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		a.login, cmd = a.login.Update(msg)
	case ScreenChat:
		a.chat, cmd = a.chat.Update(msg)
	case ScreenImages:
		a.images, cmd = a.images.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	switch a.screen {
	case ScreenChat:
		return a.chat.View()
	case ScreenImages:
		return a.images.View()
	default:
		return a.login.View()
	}
}
