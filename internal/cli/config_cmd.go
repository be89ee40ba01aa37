// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/AppleLamps/testing-uncensored/internal/config"
	"github.com/AppleLamps/testing-uncensored/internal/storage"
)

// HandleConfig shows the effective configuration.
func HandleConfig(app *App, args Args) error {
	cfg := app.Config()
	path, err := config.Path()
	if err != nil {
		path = "(unavailable)"
	}

	keyState := errorStyle.Render("not configured")
	if _, ok := app.KV.GetString(storage.KeyAPIKey); ok {
		keyState = commandStyle.Render("configured")
	}

	fmt.Println(welcomeStyle.Render("Configuration"))
	fmt.Printf("%s %s\n", infoStyle.Render("File:"), path)
	fmt.Printf("%s %s\n", infoStyle.Render("Model:"), cfg.Chat.Model)
	fmt.Printf("%s %t\n", infoStyle.Render("Streaming:"), cfg.Chat.Streaming)
	fmt.Printf("%s %d\n", infoStyle.Render("History window:"), cfg.Chat.HistoryWindow)
	fmt.Printf("%s %s\n", infoStyle.Render("Base URL:"), cfg.API.BaseURL)
	fmt.Printf("%s %s\n", infoStyle.Render("API key:"), keyState)
	return nil
}
