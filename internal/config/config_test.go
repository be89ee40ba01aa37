// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chat.Model != "x-ai/grok-3" {
		t.Errorf("Chat.Model = %q, want default", cfg.Chat.Model)
	}
	if cfg.Chat.HistoryWindow != 10 {
		t.Errorf("Chat.HistoryWindow = %d, want 10", cfg.Chat.HistoryWindow)
	}
	if !cfg.Chat.Streaming {
		t.Error("Chat.Streaming = false, want true by default")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.Model = "custom/model"
	cfg.Chat.Streaming = false
	cfg.Chat.HistoryWindow = 4
	cfg.API.SiteName = "Test Site"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Chat.Model != "custom/model" {
		t.Errorf("Chat.Model = %q, want %q", loaded.Chat.Model, "custom/model")
	}
	if loaded.Chat.Streaming {
		t.Error("Chat.Streaming = true, want false")
	}
	if loaded.Chat.HistoryWindow != 4 {
		t.Errorf("Chat.HistoryWindow = %d, want 4", loaded.Chat.HistoryWindow)
	}
	if loaded.API.SiteName != "Test Site" {
		t.Errorf("API.SiteName = %q, want %q", loaded.API.SiteName, "Test Site")
	}
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("this is {{ not toml"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for malformed file")
	}
	if cfg == nil {
		t.Fatal("Load() must always return a usable config")
	}
	if cfg.Chat.Model != Default().Chat.Model {
		t.Errorf("Chat.Model = %q, want default after parse failure", cfg.Chat.Model)
	}
}

func TestLoad_ClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chat]
model = ""
history_window = -5

[api]
base_url = ""
max_retries = 0
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chat.Model == "" {
		t.Error("Chat.Model left empty")
	}
	if cfg.Chat.HistoryWindow <= 0 {
		t.Errorf("Chat.HistoryWindow = %d, want positive", cfg.Chat.HistoryWindow)
	}
	if cfg.API.BaseURL == "" {
		t.Error("API.BaseURL left empty")
	}
	if cfg.API.MaxRetries <= 0 {
		t.Errorf("API.MaxRetries = %d, want positive", cfg.API.MaxRetries)
	}
}

func TestConfig_DataDirOverride(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/elsewhere"

	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatalf("DataDir() error = %v", err)
	}
	if dir != "/tmp/elsewhere" {
		t.Errorf("DataDir() = %q, want override", dir)
	}
}
