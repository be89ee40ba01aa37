// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages application configuration.
//
// Configuration lives in TOML at ~/.uncensored/config.toml, with
// built-in defaults for every field so a missing file is a fully
// working setup.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/AppleLamps/testing-uncensored/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Chat    ChatConfig    `toml:"chat" json:"chat"`
	API     APIConfig     `toml:"api" json:"api"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// ChatConfig controls how conversations are sent to the model.
type ChatConfig struct {
	// Model is the OpenRouter model identifier.
	Model string `toml:"model" json:"model"`
	// SystemPrompt is prepended to every request.
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// HistoryWindow is how many prior messages accompany a new turn.
	HistoryWindow int `toml:"history_window" json:"history_window"`
	// Streaming selects incremental delivery; false falls back to a
	// single response. Both use the same request path.
	Streaming bool `toml:"streaming" json:"streaming"`
}

// APIConfig controls the upstream endpoint.
type APIConfig struct {
	BaseURL    string `toml:"base_url" json:"base_url"`
	SiteURL    string `toml:"site_url" json:"site_url"`
	SiteName   string `toml:"site_name" json:"site_name"`
	MaxRetries int    `toml:"max_retries" json:"max_retries"`
}

// UIConfig controls presentation defaults.
type UIConfig struct {
	// ShowWelcome displays the welcome message in empty conversations.
	ShowWelcome bool `toml:"show_welcome" json:"show_welcome"`
	// SidebarExpanded is only the first-run default; the live value is
	// a stored preference.
	SidebarExpanded bool `toml:"sidebar_expanded" json:"sidebar_expanded"`
}

// StorageConfig controls where data lives.
type StorageConfig struct {
	// DataDir overrides the default ~/.uncensored data directory.
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Chat: ChatConfig{
			Model:         "x-ai/grok-3",
			SystemPrompt:  "You are Uncensored AI. Answer directly and completely.",
			HistoryWindow: 10,
			Streaming:     true,
		},
		API: APIConfig{
			BaseURL:    "https://openrouter.ai/api/v1",
			SiteURL:    "https://uncensoredai.net",
			SiteName:   "Uncensored AI",
			MaxRetries: 3,
		},
		UI: UIConfig{
			ShowWelcome:     true,
			SidebarExpanded: true,
		},
		Storage: StorageConfig{},
	}
}

// Dir returns the configuration directory (~/.uncensored).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".uncensored"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the directory for the settings database and keyfile,
// honoring the config override.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return Dir()
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the config file at path. A missing file returns defaults;
// a malformed file returns defaults plus the error so the caller can
// warn without losing a working setup.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyBounds()
	return cfg, nil
}

// LoadDefault reads from the standard path.
func LoadDefault() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return Load(path)
}

// Save writes the config as TOML.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyBounds clamps nonsense values back to workable ones.
func (c *Config) applyBounds() {
	if c.Chat.Model == "" {
		c.Chat.Model = Default().Chat.Model
	}
	if c.Chat.HistoryWindow <= 0 {
		c.Chat.HistoryWindow = Default().Chat.HistoryWindow
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = Default().API.BaseURL
	}
	if c.API.MaxRetries <= 0 {
		c.API.MaxRetries = Default().API.MaxRetries
	}
}
