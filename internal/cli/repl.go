// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/lorzz-tui/internal/chat"
	"github.com/jeranaias/lorzz-tui/internal/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/model"
	"github.com/jeranaias/lorzz-tui/internal/store"
	"github.com/jeranaias/lorzz-tui/internal/telemetry"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	sourceStyle = lipgloss.NewStyle().
			Foreground(styles.LinkColor)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// inputReader wraps liner with a persisted history file.
type inputReader struct {
	line        *liner.State
	historyFile string
}

func newInputReader(baseDir string) *inputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &inputReader{
		line:        line,
		historyFile: filepath.Join(baseDir, "cli_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *inputReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *inputReader) close() {
	if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// Options carries the wired dependencies into the REPL.
type Options struct {
	Manager     *chat.Manager
	ImageClient *imagegen.Client // nil disables /image
	Store       *store.Store
	Usage       *telemetry.Recorder
	Username    string
}

// Run drives the plain-terminal chat loop until EOF or /quit.
func Run(opts Options) error {
	if err := opts.Manager.Initialize(opts.Username); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	reader := newInputReader(opts.Store.BaseDir())
	defer reader.close()

	printHistory(opts.Manager.Messages(), renderer)
	fmt.Println(hintStyle.Render("/image <وصف> لتوليد صورة  •  /quit للخروج"))

	for {
		input, err := reader.read(promptStyle.Render(opts.Username + "> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case input == "/quit" || input == "/exit":
			return nil
		case input == "/clear":
			fmt.Print("\033[2J\033[H")
			continue
		case strings.HasPrefix(input, "/image"):
			handleImage(opts, strings.TrimSpace(strings.TrimPrefix(input, "/image")))
			continue
		}

		runTurn(opts.Manager, input, renderer)
	}
}

// runTurn streams one reply to stdout, then re-renders it as markdown.
func runTurn(manager *chat.Manager, text string, renderer *glamour.TermRenderer) {
	updates, err := manager.SendMessage(context.Background(), text, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[!] ")+err.Error())
		return
	}

	fmt.Println(assistantStyle.Render(model.AssistantName + ":"))

	var last chat.Update
	printed := 0
	for update := range updates {
		last = update
		if streaming := update.Conversation.Streaming(); streaming != nil {
			if len(streaming.Text) > printed {
				fmt.Print(streaming.Text[printed:])
				printed = len(streaming.Text)
			}
		}
	}
	fmt.Println()

	if last.Conversation == nil {
		return
	}
	final := last.Conversation.Last()
	if final == nil {
		return
	}

	if last.Err != nil {
		// The classified message is already in the conversation.
		fmt.Println(errorStyle.Render(final.Text))
		return
	}

	// Replace the raw stream with a markdown rendering.
	if renderer != nil && printed > 0 {
		if rendered, err := renderer.Render(final.Text); err == nil {
			fmt.Print(rendered)
		}
	}
	for i, src := range final.Sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		fmt.Printf("  %s %s\n", hintStyle.Render(fmt.Sprintf("[%d]", i+1)), sourceStyle.Render(title))
	}
}

// handleImage generates one image at the default square ratio and saves it
// to the per-user gallery.
func handleImage(opts Options, prompt string) {
	if opts.ImageClient == nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[!] ")+"مفتاح واجهة الصور غير مهيأ")
		return
	}
	if prompt == "" {
		fmt.Fprintln(os.Stderr, hintStyle.Render("usage: /image <وصف الصورة>"))
		return
	}

	fmt.Println(hintStyle.Render("جارٍ توليد الصورة..."))
	started := time.Now()
	uri, err := opts.ImageClient.Generate(context.Background(), prompt, imagegen.RatioSquare)
	if opts.Usage != nil {
		opts.Usage.RecordImage(opts.Username, string(imagegen.RatioSquare), time.Since(started), err != nil)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[!] ")+"تعذر توليد الصورة: "+err.Error())
		return
	}

	gallery, _ := opts.Store.LoadImages(opts.Username)
	gallery = model.PrependImage(gallery, model.NewImageHistoryItem(prompt, uri, string(imagegen.RatioSquare)))
	if err := opts.Store.SaveImages(opts.Username, gallery); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[!] ")+err.Error())
		return
	}
	fmt.Printf("%s %d صورة في المعرض\n", hintStyle.Render("تم الحفظ —"), len(gallery))
}

// printHistory replays the saved conversation on startup.
func printHistory(conv *model.Conversation, renderer *glamour.TermRenderer) {
	if conv == nil {
		return
	}
	for _, msg := range conv.Messages {
		if msg.IsAssistant() {
			fmt.Println(assistantStyle.Render(msg.Sender + ":"))
			if renderer != nil {
				if rendered, err := renderer.Render(msg.Text); err == nil {
					fmt.Print(rendered)
					continue
				}
			}
			fmt.Println(msg.Text)
		} else {
			fmt.Println(promptStyle.Render(msg.Sender+"> ") + msg.Text)
		}
	}
}
