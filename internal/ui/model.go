// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AppleLamps/testing-uncensored/internal/config"
	"github.com/AppleLamps/testing-uncensored/internal/engine"
	"github.com/AppleLamps/testing-uncensored/internal/model"
	"github.com/AppleLamps/testing-uncensored/internal/storage"
	"github.com/AppleLamps/testing-uncensored/internal/store"
)

// Deps are the application pieces the TUI drives.
type Deps struct {
	Store  *store.Store
	Engine *engine.Engine
	KV     *storage.KV
	Config func() *config.Config
}

// sendDoneMsg reports the outcome of a send started by the composer.
type sendDoneMsg struct {
	reply *model.Message
	err   error
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	deps Deps

	// Components
	viewport viewport.Model
	composer textarea.Model
	spinner  spinner.Model

	// Dimensions
	width  int
	height int
	ready  bool

	// Sidebar
	sidebarExpanded bool

	// Streaming state
	busy       bool
	streamBuf  *StreamingBuffer
	streamText string
	cancelSend context.CancelFunc

	// Presentation-only state
	inlineError string
	status      string

	// Destructive confirmations
	confirmClearStep int
	confirmDeleteID  string
}

// New creates the chat interface.
func New(deps Deps) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / framesPerSecond,
	}

	cfg := deps.Config()
	return Model{
		deps:            deps,
		viewport:        vp,
		composer:        ta,
		spinner:         sp,
		streamBuf:       NewStreamingBuffer(),
		sidebarExpanded: deps.KV.GetBool(storage.KeySidebarExpanded, cfg.UI.SidebarExpanded),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// sendCmd runs one chat turn off the UI loop. Tokens land in the
// streaming buffer; the frame tick paints them.
func sendCmd(ctx context.Context, eng *engine.Engine, id, content string, buf *StreamingBuffer) tea.Cmd {
	return func() tea.Msg {
		reply, err := eng.Send(ctx, id, content, nil, buf.Write)
		return sendDoneMsg{reply: reply, err: err}
	}
}
