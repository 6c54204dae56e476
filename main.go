// lorzz TUI - a terminal client for hosted LLM chat and image generation.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lorzz-tui/internal/chat"
	"github.com/jeranaias/lorzz-tui/internal/cli"
	"github.com/jeranaias/lorzz-tui/internal/config"
	"github.com/jeranaias/lorzz-tui/internal/gemini"
	"github.com/jeranaias/lorzz-tui/internal/imagegen"
	"github.com/jeranaias/lorzz-tui/internal/store"
	"github.com/jeranaias/lorzz-tui/internal/telemetry"
	"github.com/jeranaias/lorzz-tui/internal/ui"
	"github.com/jeranaias/lorzz-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		plain       = flag.Bool("plain", false, "run the plain-terminal REPL instead of the TUI")
		user        = flag.String("user", "", "display name to sign in as (plain mode)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("lorzz %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	chatClient, err := gemini.NewClient(&gemini.ClientConfig{
		BaseURL:           cfg.Chat.BaseURL,
		Model:             cfg.Chat.Model,
		APIKey:            cfg.Chat.APIKey,
		StreamTimeout:     time.Duration(cfg.Chat.StreamTimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.Chat.RequestsPerMinute,
	})
	if err != nil {
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			fatal(errors.New("no API key configured; set GEMINI_API_KEY or chat.api_key in ~/.lorzz/config.toml"))
		}
		fatal(err)
	}

	// Image generation is optional: without a key the screen is disabled.
	var imageClient *imagegen.Client
	if cfg.HasImageKey() {
		imageClient, err = imagegen.NewClient(&imagegen.ClientConfig{
			BaseURL:        cfg.Image.BaseURL,
			Model:          cfg.Image.Model,
			APIKey:         cfg.Image.APIKey,
			Provider:       imagegen.ProviderKind(cfg.Image.Provider),
			RequestTimeout: time.Duration(cfg.Image.RequestTimeoutSecs) * time.Second,
		})
		if err != nil {
			fatal(err)
		}
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = store.DefaultBaseDir()
		if err != nil {
			fatal(err)
		}
	}
	st, err := store.NewStore(dataDir)
	if err != nil {
		fatal(err)
	}

	// The usage log is best-effort; a broken database never blocks chat.
	var usage *telemetry.Recorder
	if cfg.Telemetry.Enabled {
		dbPath := cfg.Telemetry.DatabasePath
		if dbPath == "" {
			dbPath = dataDir + "/usage.db"
		}
		if rec, err := telemetry.Open(dbPath); err == nil {
			usage = rec
			defer usage.Close()
		}
	}

	manager := chat.NewManager(st, chatClient)
	if usage != nil {
		manager.SetUsageRecorder(usage)
	}

	if *plain {
		if err := runPlain(manager, imageClient, st, usage, *user); err != nil {
			fatal(err)
		}
		return
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	app := ui.NewApp(ui.Options{
		Theme:         theme,
		Store:         st,
		Manager:       manager,
		ImageClient:   imageClient,
		Usage:         usage,
		MarkdownWidth: cfg.UI.MarkdownWidth,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Theme edits to the config file apply without a restart.
	if cfgPath, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
			program.Send(ui.ConfigReloadedMsg{Theme: next.UI.Theme})
		}); err == nil {
			if err := watcher.Watch(); err != nil {
				watcher.Close()
			} else {
				defer watcher.Close()
			}
		}
	}

	if _, err := program.Run(); err != nil {
		fatal(err)
	}
}

// runPlain signs in and hands off to the REPL.
func runPlain(manager *chat.Manager, imageClient *imagegen.Client, st *store.Store, usage *telemetry.Recorder, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		username = promptUsername(st.LastUser())
	}
	if username == "" {
		return errors.New("a display name is required")
	}

	return cli.Run(cli.Options{
		Manager:     manager,
		ImageClient: imageClient,
		Store:       st,
		Usage:       usage,
		Username:    username,
	})
}

// promptUsername asks for a display name on stdin, offering the last one used.
func promptUsername(lastUser string) string {
	if lastUser != "" {
		fmt.Printf("اسم العرض [%s]: ", lastUser)
	} else {
		fmt.Print("اسم العرض: ")
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return lastUser
	}
	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		return lastUser
	}
	return name
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
