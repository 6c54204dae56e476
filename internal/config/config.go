// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete lorzz configuration.
type Config struct {
	// DataDir overrides the per-user state directory (default: ~/.lorzz)
	DataDir string `toml:"data_dir"`

	// Chat configuration
	Chat ChatConfig `toml:"chat"`

	// Image generation configuration
	Image ImageConfig `toml:"image"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Telemetry configuration
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ChatConfig contains the language API configuration.
type ChatConfig struct {
	// APIKey is the language API credential. Usually set via GEMINI_API_KEY.
	APIKey string `toml:"api_key"`
	// BaseURL of the language API
	BaseURL string `toml:"base_url"`
	// Model is the chat model name
	Model string `toml:"model"`
	// StreamTimeoutSecs bounds one streamed turn in seconds
	StreamTimeoutSecs int `toml:"stream_timeout_secs"`
	// RequestsPerMinute paces outgoing turns client-side
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// ImageConfig contains the image generation API configuration.
type ImageConfig struct {
	// APIKey is the image API credential. Falls back to the chat key.
	APIKey string `toml:"api_key"`
	// BaseURL of the image API
	BaseURL string `toml:"base_url"`
	// Model is the image model name
	Model string `toml:"model"`
	// Provider is the response shape: "envelope" or "binary"
	Provider string `toml:"provider"`
	// RequestTimeoutSecs bounds one generation call in seconds
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// MarkdownWidth is the wrap width for rendered replies (0 = terminal)
	MarkdownWidth int `toml:"markdown_width"`
}

// TelemetryConfig controls the local usage log.
type TelemetryConfig struct {
	// Enabled turns the local usage database on
	Enabled bool `toml:"enabled"`
	// DatabasePath overrides the usage database location
	// (default: <data_dir>/usage.db)
	DatabasePath string `toml:"database_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration with all default values set.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			BaseURL:           "https://generativelanguage.googleapis.com",
			Model:             "gemini-1.5-flash",
			StreamTimeoutSecs: 300,
			RequestsPerMinute: 30,
		},
		Image: ImageConfig{
			BaseURL:            "https://generativelanguage.googleapis.com",
			Model:              "imagen-3.0-generate-002",
			Provider:           "envelope",
			RequestTimeoutSecs: 120,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// FILE LOCATIONS
// =============================================================================

// Dir returns the lorzz configuration directory (~/.lorzz).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".lorzz"), nil
}

// Path returns the configuration file path (~/.lorzz/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the configuration from the default location.
// A missing file yields the defaults; environment overrides apply last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from a specific file.
// A missing file yields the defaults; environment overrides apply last.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		fillDefaults(cfg)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = defaults.Chat.BaseURL
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = defaults.Chat.Model
	}
	if cfg.Chat.StreamTimeoutSecs <= 0 {
		cfg.Chat.StreamTimeoutSecs = defaults.Chat.StreamTimeoutSecs
	}
	if cfg.Chat.RequestsPerMinute <= 0 {
		cfg.Chat.RequestsPerMinute = defaults.Chat.RequestsPerMinute
	}

	if cfg.Image.BaseURL == "" {
		cfg.Image.BaseURL = defaults.Image.BaseURL
	}
	if cfg.Image.Model == "" {
		cfg.Image.Model = defaults.Image.Model
	}
	if cfg.Image.Provider == "" {
		cfg.Image.Provider = defaults.Image.Provider
	}
	if cfg.Image.RequestTimeoutSecs <= 0 {
		cfg.Image.RequestTimeoutSecs = defaults.Image.RequestTimeoutSecs
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variables over the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Chat.APIKey = v
	}
	if v := os.Getenv("LORZZ_CHAT_MODEL"); v != "" {
		c.Chat.Model = v
	}
	if v := os.Getenv("LORZZ_CHAT_BASE_URL"); v != "" {
		c.Chat.BaseURL = v
	}
	if v := os.Getenv("LORZZ_IMAGE_API_KEY"); v != "" {
		c.Image.APIKey = v
	}
	if v := os.Getenv("LORZZ_DATA_DIR"); v != "" {
		c.DataDir = v
	}

	// The image API shares the chat credential unless set apart.
	if c.Image.APIKey == "" {
		c.Image.APIKey = c.Chat.APIKey
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validateURL("chat.base_url", c.Chat.BaseURL); err != nil {
		return err
	}
	if err := validateURL("image.base_url", c.Image.BaseURL); err != nil {
		return err
	}

	switch c.Image.Provider {
	case "envelope", "binary":
	default:
		return fmt.Errorf("image.provider must be \"envelope\" or \"binary\", got %q", c.Image.Provider)
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}

	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", key, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, u.Scheme)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file with owner-only
// permissions, since it may carry API keys.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# lorzz configuration file")
	fmt.Fprintln(file, "# Generated by lorzz - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Redacted returns a single-line summary safe for logs: keys are masked.
func (c *Config) Redacted() string {
	mask := func(s string) string {
		if s == "" {
			return "(unset)"
		}
		if len(s) <= 4 {
			return "****"
		}
		return "****" + s[len(s)-4:]
	}
	return fmt.Sprintf("chat{model=%s key=%s} image{model=%s provider=%s key=%s} theme=%s",
		c.Chat.Model, mask(c.Chat.APIKey),
		c.Image.Model, c.Image.Provider, mask(c.Image.APIKey),
		c.UI.Theme)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// HasImageKey reports whether image generation is usable.
func (c *Config) HasImageKey() bool {
	return strings.TrimSpace(c.Image.APIKey) != ""
}
