// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine drives a chat turn from input to persisted reply.
//
// A send moves through a small state machine: idle, requesting,
// streaming, finalizing, then completed or failed. The user's message
// is persisted before the network is touched, so a crash or transport
// failure never loses what was typed. Streaming and one-shot delivery
// share this pipeline; which one runs is a configuration choice.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/AppleLamps/testing-uncensored/internal/model"
	"github.com/AppleLamps/testing-uncensored/internal/openrouter"
	"github.com/AppleLamps/testing-uncensored/internal/store"
)

// State is the engine's position in the send lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateStreaming
	StateFinalizing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequesting:
		return "requesting"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Completer is the slice of the API client the engine needs.
type Completer interface {
	Chat(ctx context.Context, messages []openrouter.ChatMessage) (*openrouter.ChatResponse, error)
	ChatStream(ctx context.Context, messages []openrouter.ChatMessage, callback openrouter.StreamCallback) error
}

// Options carry the per-send settings. They are fetched fresh for
// every send so config edits apply without a restart.
type Options struct {
	SystemPrompt  string
	HistoryWindow int
	Streaming     bool
}

// DeltaFunc receives reply text as it arrives.
type DeltaFunc func(token string)

// Engine orchestrates sends against one conversation store.
type Engine struct {
	client  Completer
	store   *store.Store
	options func() Options

	mu    sync.Mutex
	state State
}

// New creates an engine. The options func is consulted on every send.
func New(client Completer, st *store.Store, options func() Options) *Engine {
	return &Engine{
		client:  client,
		store:   st,
		options: options,
		state:   StateIdle,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Send runs one chat turn in conversation id. The user's message is
// appended and persisted before any network activity. onDelta may be
// nil. On success the finalized assistant message is returned; on a
// mid-stream failure any partial reply is persisted and returned
// alongside the error.
func (e *Engine) Send(ctx context.Context, id, content string, attachments []model.Attachment, onDelta DeltaFunc) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(attachments) == 0 {
		return nil, &SendError{Kind: KindValidation, Err: ErrEmptyMessage}
	}

	if _, ok := e.store.Get(id); !ok {
		return nil, &SendError{Kind: KindValidation, Err: store.ErrConversationNotFound}
	}

	opts := e.options()
	e.setState(StateRequesting)

	// RELIABILITY: persist the user's words before the request leaves.
	userMsg := model.NewUserMessage(content, attachments...)
	if err := e.store.AppendMessage(id, userMsg); err != nil {
		e.setState(StateFailed)
		return nil, &SendError{Kind: KindValidation, Err: err}
	}

	// Snapshot taken after the append so the history window sits right
	// behind the user turn, which History excludes as trailing.
	conv, _ := e.store.Get(id)
	wire := e.buildWire(conv, userMsg, opts)

	reply := model.NewAssistantMessage()
	var sendErr error
	if opts.Streaming {
		sendErr = e.client.ChatStream(ctx, wire, func(chunk openrouter.StreamChunk) {
			token := chunk.GetContent()
			if token == "" {
				return
			}
			e.setState(StateStreaming)
			reply.AppendToken(token)
			if onDelta != nil {
				onDelta(token)
			}
		})
	} else {
		var resp *openrouter.ChatResponse
		resp, sendErr = e.client.Chat(ctx, wire)
		if sendErr == nil {
			e.setState(StateStreaming)
			token := resp.GetContent()
			reply.AppendToken(token)
			if onDelta != nil && token != "" {
				onDelta(token)
			}
		}
	}

	e.setState(StateFinalizing)
	reply.FinalizeStream()

	if sendErr != nil {
		e.setState(StateFailed)
		wrapped := &SendError{Kind: classify(sendErr), Err: sendErr}
		if reply.Content != "" {
			// Keep what arrived before the failure.
			if err := e.store.AppendMessage(id, reply); err == nil {
				return reply, wrapped
			}
		}
		return nil, wrapped
	}

	if reply.Content == "" {
		e.setState(StateFailed)
		return nil, &SendError{Kind: KindNetwork, Err: ErrEmptyReply}
	}

	if err := e.store.AppendMessage(id, reply); err != nil {
		e.setState(StateFailed)
		return nil, &SendError{Kind: KindValidation, Err: err}
	}

	e.setState(StateCompleted)
	return reply, nil
}

// buildWire assembles the request: system directive, a window of prior
// turns, then the new user turn with its attachment note.
func (e *Engine) buildWire(conv *model.Conversation, userMsg *model.Message, opts Options) []openrouter.ChatMessage {
	var wire []openrouter.ChatMessage

	if opts.SystemPrompt != "" {
		wire = append(wire, openrouter.NewSystemMessage(opts.SystemPrompt))
	}

	for _, m := range conv.History(opts.HistoryWindow) {
		wire = append(wire, openrouter.ChatMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}

	wire = append(wire, openrouter.NewUserMessage(
		model.AnnotateAttachments(userMsg.Content, userMsg.Attachments)))
	return wire
}
