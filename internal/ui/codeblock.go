// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// CODE BLOCK RENDERING
// =============================================================================

var codeBlockStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n?(.*?)```")

// renderMessageBody prepares message text for the timeline: fenced
// code blocks get syntax highlighting and a border, everything else is
// passed through as-is. An unterminated fence stays literal.
func renderMessageBody(content string, width int) string {
	return fenceRe.ReplaceAllStringFunc(content, func(block string) string {
		groups := fenceRe.FindStringSubmatch(block)
		return renderCodeBlock(groups[1], groups[2], width)
	})
}

// renderCodeBlock highlights code with chroma. Highlighting failures
// fall back to the plain source.
func renderCodeBlock(language, code string, width int) string {
	code = strings.TrimRight(code, "\n")

	var highlighted strings.Builder
	lang := language
	if lang == "" {
		lang = "text"
	}
	if err := quick.Highlight(&highlighted, code, lang, "terminal256", "catppuccin-mocha"); err != nil {
		highlighted.Reset()
		highlighted.WriteString(code)
	}

	style := codeBlockStyle
	if width > 4 {
		style = style.MaxWidth(width)
	}
	return style.Render(strings.TrimRight(highlighted.String(), "\n"))
}
