// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/AppleLamps/testing-uncensored/internal/model"
)

const sidebarWidth = 28

// fitTitle truncates a title to the given display width, accounting
// for wide runes so CJK titles do not overflow the column.
func fitTitle(title string, width int) string {
	if runewidth.StringWidth(title) <= width {
		return title
	}
	return runewidth.Truncate(title, width, "…")
}

// renderSidebar draws the conversation list, most recent first, with
// the active conversation highlighted.
func renderSidebar(conversations []*model.Conversation, activeID string, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chats"))
	b.WriteString("\n")

	lines := 1
	for _, conv := range conversations {
		if lines >= height-1 {
			b.WriteString(statusStyle.Render("…"))
			break
		}
		title := fitTitle(conv.GetTitle(), sidebarWidth-3)
		if conv.ID == activeID {
			b.WriteString(sidebarActiveStyle.Render("> " + title))
		} else {
			b.WriteString(sidebarItemStyle.Render("  " + title))
		}
		b.WriteString("\n")
		lines++
	}

	content := lipgloss.NewStyle().Width(sidebarWidth - 1).Height(height).Render(b.String())
	return sidebarStyle.Render(content)
}
