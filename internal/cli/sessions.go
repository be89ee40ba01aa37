// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"
)

// HandleSessions lists saved conversations, most recent first.
func HandleSessions(app *App, args Args) error {
	list := app.Store.List()
	activeID := app.Store.ActiveID()

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("Conversations"))
	}
	for i, conv := range list {
		marker := " "
		if conv.ID == activeID {
			marker = commandStyle.Render("*")
		}
		fmt.Printf("%s %2d. %-40s %s\n", marker, i+1, conv.GetTitle(),
			infoStyle.Render(fmt.Sprintf("%d messages, updated %s",
				conv.MessageCount(), formatAge(conv.UpdatedAt))))
	}
	return nil
}

// formatAge renders a timestamp as a rough age.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
