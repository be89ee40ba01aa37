// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/AppleLamps/testing-uncensored/internal/config"
	"github.com/AppleLamps/testing-uncensored/internal/engine"
	"github.com/AppleLamps/testing-uncensored/internal/openrouter"
	"github.com/AppleLamps/testing-uncensored/internal/secret"
	"github.com/AppleLamps/testing-uncensored/internal/storage"
	"github.com/AppleLamps/testing-uncensored/internal/store"
)

// App wires the long-lived pieces every command shares: configuration,
// the settings database, the key vault, the conversation store, the
// API client and the send engine.
type App struct {
	KV     *storage.KV
	Vault  *secret.Vault
	Store  *store.Store
	Client *openrouter.Client
	Engine *engine.Engine

	cfgMu   sync.RWMutex
	cfg     *config.Config
	watcher *config.Watcher
}

// NewApp builds the application from configuration and stored state.
// The model and streaming overrides come from the command line.
func NewApp(args Args) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		// Defaults still work; tell the user their file is broken.
		log.Printf("config: %v", err)
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	kv, err := storage.OpenKV(filepath.Join(dataDir, "settings.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	vault, err := secret.Open(filepath.Join(dataDir, "keyfile"))
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to open key vault: %w", err)
	}

	app := &App{
		KV:    kv,
		Vault: vault,
		Store: store.New(kv),
		cfg:   cfg,
	}

	apiKey := app.loadAPIKey()
	client := openrouter.NewClient(apiKey).
		WithBaseURL(cfg.API.BaseURL).
		WithModel(cfg.Chat.Model).
		WithSite(cfg.API.SiteURL, cfg.API.SiteName).
		WithMaxRetries(cfg.API.MaxRetries)
	if args.Model != "" {
		client.WithModel(args.Model)
	}
	app.Client = client

	app.Engine = engine.New(client, app.Store, func() engine.Options {
		c := app.Config()
		return engine.Options{
			SystemPrompt:  c.Chat.SystemPrompt,
			HistoryWindow: c.Chat.HistoryWindow,
			Streaming:     c.Chat.Streaming && !args.NoStream,
		}
	})

	app.startConfigWatch()
	return app, nil
}

// Config returns the current configuration snapshot.
func (a *App) Config() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// loadAPIKey reads the stored key and unseals it. A missing or
// undecryptable key yields an unconfigured client, not a crash.
func (a *App) loadAPIKey() string {
	sealed, ok := a.KV.GetString(storage.KeyAPIKey)
	if !ok {
		return ""
	}
	key, err := a.Vault.Unseal(sealed)
	if err != nil {
		log.Printf("settings: stored API key could not be decrypted: %v", err)
		return ""
	}
	return key
}

// startConfigWatch hot-reloads config edits for the lifetime of the
// process. Watch failures degrade to a static config.
func (a *App) startConfigWatch() {
	path, err := config.Path()
	if err != nil {
		return
	}
	a.watcher = config.NewWatcher(path, func(cfg *config.Config) {
		a.cfgMu.Lock()
		a.cfg = cfg
		a.cfgMu.Unlock()
		log.Printf("config: reloaded from %s", path)
	})
	if err := a.watcher.Start(context.Background()); err != nil {
		log.Printf("config: watch unavailable: %v", err)
		a.watcher = nil
	}
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			log.Printf("settings: close: %v", err)
		}
	}
}
