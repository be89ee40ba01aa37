// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/AppleLamps/testing-uncensored/internal/ui"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(ui.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(ui.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(ui.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(ui.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(ui.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(ui.Rose).
			Bold(true)
)
