// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AppleLamps/testing-uncensored/internal/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	body := m.viewport.View()
	if m.sidebarExpanded {
		sidebar := renderSidebar(m.deps.Store.List(), m.deps.Store.ActiveID(), m.viewport.Height)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.composer.View(),
		m.renderStatusLine(),
	)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Uncensored AI")
	conv := m.deps.Store.Active()
	info := statusStyle.Render(fmt.Sprintf("  %s · %s", conv.GetTitle(), m.deps.Config().Chat.Model))
	return title + info
}

// renderStatusLine shows, in priority order: a pending confirmation,
// the typing indicator, or the transient status.
func (m Model) renderStatusLine() string {
	switch {
	case m.confirmClearStep == 1:
		return confirmStyle.Render("Delete ALL conversations? (y/n)")
	case m.confirmClearStep == 2:
		return confirmStyle.Render("This cannot be undone. Really delete everything? (y/n)")
	case m.confirmDeleteID != "":
		return confirmStyle.Render("Delete this conversation? (y/n)")
	case m.busy && m.streamText == "":
		return m.spinner.View() + statusStyle.Render(" thinking…")
	case m.busy:
		return m.spinner.View() + statusStyle.Render(" streaming…")
	default:
		return statusStyle.Render(m.status)
	}
}

// chatWidth is the timeline width given the sidebar state.
func (m Model) chatWidth() int {
	if m.sidebarExpanded {
		return m.width - sidebarWidth
	}
	return m.width
}

// refreshViewport rebuilds the timeline from the store.
func (m *Model) refreshViewport(stickToBottom bool) {
	m.viewport.SetContent(m.renderTimeline())
	if stickToBottom {
		m.viewport.GotoBottom()
	}
}

// renderTimeline renders the active conversation's messages plus the
// presentation-only extras: the welcome bubble, live streaming text
// and the inline error bubble.
func (m *Model) renderTimeline() string {
	conv := m.deps.Store.Active()
	width := m.chatWidth() - 4
	var b strings.Builder

	if conv.IsEmpty() && !m.busy && m.deps.Config().UI.ShowWelcome {
		b.WriteString(m.renderWelcome(width))
	}

	for _, msg := range conv.Messages {
		if msg.Role == model.RoleSystem {
			continue
		}
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}

	if m.busy && m.streamText != "" {
		b.WriteString(senderAssistantStyle.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		b.WriteString(assistantBubbleStyle.Width(width).Render(renderMessageBody(m.streamText, width-2)))
		b.WriteString("\n")
	}

	if m.inlineError != "" {
		b.WriteString(errorBubbleStyle.Width(width).Render(m.inlineError))
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderMessage(msg *model.Message, width int) string {
	var b strings.Builder

	sender := senderAssistantStyle
	bubble := assistantBubbleStyle
	if msg.Role == model.RoleUser {
		sender = senderUserStyle
		bubble = userBubbleStyle
	}

	b.WriteString(sender.Render(msg.Role.DisplayName()))
	b.WriteString(statusStyle.Render("  " + msg.Timestamp.Format("15:04")))
	b.WriteString("\n")

	content := msg.GetDisplayContent()
	if len(msg.Attachments) > 0 {
		names := make([]string, len(msg.Attachments))
		for i, a := range msg.Attachments {
			names[i] = a.Name
		}
		content += "\n" + statusStyle.Render("Attached: "+strings.Join(names, ", "))
	}

	b.WriteString(bubble.Width(width).Render(renderMessageBody(content, width-2)))
	b.WriteString("\n")
	return b.String()
}

// renderWelcome shows the synthetic greeting for an empty
// conversation. It never enters the store.
func (m *Model) renderWelcome(width int) string {
	var b strings.Builder
	b.WriteString(senderAssistantStyle.Render(model.RoleAssistant.DisplayName()))
	b.WriteString("\n")
	b.WriteString(assistantBubbleStyle.Width(width).Render(
		"Hello! I'm Uncensored AI. Ask me anything - no topic is off limits."))
	b.WriteString("\n")
	b.WriteString(upsellStyle.Render("Upgrade to Pro for longer conversations and file uploads."))
	b.WriteString("\n\n")
	return b.String()
}
