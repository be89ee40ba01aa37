// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AppleLamps/testing-uncensored/internal/markdown"
	"github.com/AppleLamps/testing-uncensored/internal/model"
	"github.com/AppleLamps/testing-uncensored/internal/util"
)

// HandleExport writes a conversation to an HTML file. The argument is
// a number from "uncensored sessions" or a conversation ID; with no
// argument the active conversation is exported.
func HandleExport(app *App, args Args) error {
	conv := app.Store.Active()
	if len(args.Rest) > 0 {
		ref := args.Rest[0]
		list := app.Store.List()
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
			conv = list[n-1]
		} else if c, ok := app.Store.Get(ref); ok {
			conv = c
		} else {
			return fmt.Errorf("no conversation %q", ref)
		}
	}

	path := args.Output
	if path == "" {
		path = exportFilename(conv)
	}
	if err := writeConversationHTML(conv, path); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// exportActiveConversation backs the /export slash command.
func exportActiveConversation(app *App, path string) error {
	conv := app.Store.Active()
	if path == "" {
		path = exportFilename(conv)
	}
	if err := writeConversationHTML(conv, path); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// exportFilename derives a safe filename from the title.
func exportFilename(conv *model.Conversation) string {
	title := strings.ToLower(conv.GetTitle())
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "conversation"
	}
	return name + ".html"
}

// writeConversationHTML renders the conversation as a standalone page.
// Message bodies go through the HTML renderer, the same transformation
// the web client applies.
func writeConversationHTML(conv *model.Conversation, path string) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + escapeHTMLText(conv.GetTitle()) + "</title>\n")
	b.WriteString(`<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.5rem; }
.user { background: #e8f0fe; }
.assistant { background: #f5f3ff; }
.sender { font-weight: bold; margin-bottom: 0.25rem; }
pre { background: #1e1e2e; color: #cdd6f4; padding: 0.75rem; border-radius: 0.4rem; overflow-x: auto; }
code { font-family: monospace; }
</style>
</head>
<body>
`)
	b.WriteString("<h1>" + escapeHTMLText(conv.GetTitle()) + "</h1>\n")

	for _, msg := range conv.Messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		b.WriteString(`<div class="message ` + msg.Role.String() + "\">\n")
		b.WriteString(`<div class="sender">` + escapeHTMLText(msg.Role.DisplayName()) + "</div>\n")
		b.WriteString(markdown.Render(msg.Content))
		b.WriteString("\n</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return util.AtomicWriteFile(path, []byte(b.String()), 0644)
}

func escapeHTMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
