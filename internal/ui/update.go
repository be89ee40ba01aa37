// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AppleLamps/testing-uncensored/internal/engine"
	"github.com/AppleLamps/testing-uncensored/internal/storage"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case streamTickMsg:
		return m.handleStreamTick()

	case sendDoneMsg:
		return m.handleSendDone(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateComponents(msg)
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	chatWidth := m.chatWidth()
	m.viewport.Width = chatWidth
	m.viewport.Height = m.height - m.composer.Height() - 4
	m.composer.SetWidth(chatWidth)
	m.refreshViewport(true)
	return m
}

func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if !m.busy {
		return m, nil
	}
	if chunk, ok := m.streamBuf.Flush(); ok {
		m.streamText += chunk
	}
	m.refreshViewport(true)
	return m, streamTickCmd()
}

func (m Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if m.cancelSend != nil {
		m.cancelSend()
		m.cancelSend = nil
	}
	if chunk, ok := m.streamBuf.ForceFlush(); ok {
		m.streamText += chunk
	}
	m.streamText = ""
	m.status = ""

	if msg.err != nil {
		var sendErr *engine.SendError
		if errors.As(msg.err, &sendErr) {
			// Validation problems are silent no-ops; everything else
			// becomes an inline error bubble.
			if sendErr.Kind != engine.KindValidation {
				m.inlineError = sendErr.UserMessage()
			}
		} else {
			m.inlineError = "Sorry, I encountered an error. Please try again."
		}
	}

	m.refreshViewport(true)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Destructive confirmations swallow all input until answered.
	if m.confirmClearStep > 0 {
		return m.handleClearConfirm(msg)
	}
	if m.confirmDeleteID != "" {
		return m.handleDeleteConfirm(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		if m.busy {
			return m.cancelStream(), nil
		}
		return m, tea.Quit

	case "esc":
		if m.busy {
			return m.cancelStream(), nil
		}
		return m, nil

	case "enter":
		return m.submit()

	case "ctrl+n":
		if m.busy {
			return m, nil
		}
		m.deps.Store.Create()
		m.inlineError = ""
		m.status = "New conversation"
		m.refreshViewport(true)
		return m, nil

	case "ctrl+b":
		m.sidebarExpanded = !m.sidebarExpanded
		m.deps.KV.SetBool(storage.KeySidebarExpanded, m.sidebarExpanded)
		m = m.handleResize(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, nil

	case "ctrl+k", "ctrl+j":
		if m.busy {
			return m, nil
		}
		m.switchAdjacent(msg.String() == "ctrl+j")
		m.inlineError = ""
		m.refreshViewport(true)
		return m, nil

	case "ctrl+x":
		if m.busy {
			return m, nil
		}
		m.confirmDeleteID = m.deps.Store.ActiveID()
		return m, nil

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil

	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m Model) handleClearConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		if m.confirmClearStep == 1 {
			// Second, harder question before anything is deleted.
			m.confirmClearStep = 2
			return m, nil
		}
		m.confirmClearStep = 0
		m.deps.Store.ClearAll()
		m.inlineError = ""
		m.status = "All conversations deleted"
		m.refreshViewport(true)
		return m, nil
	default:
		m.confirmClearStep = 0
		m.status = ""
		return m, nil
	}
}

func (m Model) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmDeleteID
	m.confirmDeleteID = ""
	if strings.ToLower(msg.String()) == "y" {
		if err := m.deps.Store.Delete(id); err == nil {
			m.status = "Conversation deleted"
			m.refreshViewport(true)
		}
	}
	return m, nil
}

func (m Model) cancelStream() Model {
	if m.cancelSend != nil {
		m.cancelSend()
	}
	m.status = "Cancelled"
	return m
}

// submit sends the composer content, or runs it as a command when it
// starts with a slash.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		// Empty sends are a silent no-op.
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		m.composer.Reset()
		return m.runCommand(text)
	}

	m.composer.Reset()
	m.inlineError = ""
	m.status = ""
	m.busy = true
	m.streamBuf.Reset()
	m.streamText = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSend = cancel

	return m, tea.Batch(
		sendCmd(ctx, m.deps.Engine, m.deps.Store.ActiveID(), text, m.streamBuf),
		streamTickCmd(),
		m.spinner.Tick,
	)
}

// runCommand handles slash commands typed into the composer.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(text)
	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/new":
		m.deps.Store.Create()
		m.status = "New conversation"
	case "/rename":
		if len(rest) == 0 {
			m.status = "Usage: /rename <title>"
			break
		}
		if err := m.deps.Store.Rename(m.deps.Store.ActiveID(), strings.Join(rest, " ")); err != nil {
			m.status = err.Error()
			break
		}
		m.status = "Renamed"
	case "/delete":
		m.confirmDeleteID = m.deps.Store.ActiveID()
	case "/clear":
		m.confirmClearStep = 1
	case "/help":
		m.status = "enter send | ctrl+n new | ctrl+j/k switch | ctrl+b sidebar | ctrl+x delete | /clear wipe | ctrl+c quit"
	case "/quit", "/exit":
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("Unknown command %s", command)
	}

	m.refreshViewport(true)
	return m, nil
}

// switchAdjacent moves the active pointer through the recency list.
func (m *Model) switchAdjacent(next bool) {
	list := m.deps.Store.List()
	activeID := m.deps.Store.ActiveID()
	for i, conv := range list {
		if conv.ID != activeID {
			continue
		}
		j := i - 1
		if next {
			j = i + 1
		}
		if j >= 0 && j < len(list) {
			m.deps.Store.SwitchTo(list[j].ID)
		}
		return
	}
}

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.composer, cmd = m.composer.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
