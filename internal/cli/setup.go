// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/AppleLamps/testing-uncensored/internal/storage"
)

// HandleSetup prompts for the OpenRouter API key and stores it sealed.
func HandleSetup(app *App, args Args) error {
	fmt.Println(welcomeStyle.Render("Uncensored AI setup"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))

	if _, ok := app.KV.GetString(storage.KeyAPIKey); ok {
		fmt.Println(infoStyle.Render("An API key is already stored. Entering a new one replaces it."))
	}
	fmt.Println(infoStyle.Render("Get a key at https://openrouter.ai/keys"))
	fmt.Println()

	key, err := promptSecure("OpenRouter API key: ")
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Println(warningStyle.Render("No key entered; nothing saved."))
		return nil
	}
	if !strings.HasPrefix(key, "sk-or-") {
		fmt.Println(warningStyle.Render("That does not look like an OpenRouter key (expected sk-or- prefix). Saving anyway."))
	}

	// SECURITY: the key is sealed before it touches the database.
	sealed, err := app.Vault.Seal(key)
	if err != nil {
		return fmt.Errorf("failed to seal API key: %w", err)
	}
	if err := app.KV.SetString(storage.KeyAPIKey, sealed); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Println(commandStyle.Render("[OK] API key saved."))
	fmt.Println(infoStyle.Render("Run 'uncensored' to start chatting."))
	return nil
}

// promptSecure reads a secret without echoing when stdin is a TTY.
func promptSecure(prompt string) (string, error) {
	fmt.Print(prompt)
	if IsTTY() {
		keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(keyBytes), nil
	}

	// Piped input (scripts, tests).
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
