// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppleLamps/testing-uncensored/internal/model"
	"github.com/AppleLamps/testing-uncensored/internal/openrouter"
	"github.com/AppleLamps/testing-uncensored/internal/store"
)

// memPersister keeps saves in memory and counts them.
type memPersister struct {
	saves int
}

func (p *memPersister) SaveConversations(map[string]*model.Conversation) { p.saves++ }

func (p *memPersister) LoadConversations() map[string]*model.Conversation {
	return map[string]*model.Conversation{}
}

// fakeCompleter scripts responses and records what was sent.
type fakeCompleter struct {
	chunks    []string
	streamErr error
	chatText  string
	chatErr   error

	gotWire     []openrouter.ChatMessage
	savesAtCall int
	persister   *memPersister

	chatCalls   int
	streamCalls int
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []openrouter.ChatMessage) (*openrouter.ChatResponse, error) {
	f.chatCalls++
	f.record(messages)
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	var resp openrouter.ChatResponse
	raw := `{"choices": [{"message": {"role": "assistant", "content": ` +
		strconv.Quote(f.chatText) + `}, "finish_reason": "stop"}]}`
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (f *fakeCompleter) ChatStream(ctx context.Context, messages []openrouter.ChatMessage, callback openrouter.StreamCallback) error {
	f.streamCalls++
	f.record(messages)
	for _, text := range f.chunks {
		var chunk openrouter.StreamChunk
		raw := `{"choices": [{"delta": {"content": ` + strconv.Quote(text) + `}}]}`
		if err := json.Unmarshal([]byte(raw), &chunk); err != nil {
			return err
		}
		callback(chunk)
	}
	return f.streamErr
}

func (f *fakeCompleter) record(messages []openrouter.ChatMessage) {
	f.gotWire = messages
	if f.persister != nil {
		f.savesAtCall = f.persister.saves
	}
}

func testOptions(streaming bool) func() Options {
	return func() Options {
		return Options{
			SystemPrompt:  "You are a test assistant.",
			HistoryWindow: 10,
			Streaming:     streaming,
		}
	}
}

func TestSend_EmptyInputIsValidationError(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{}
	eng := New(fake, st, testOptions(true))

	_, err := eng.Send(context.Background(), st.ActiveID(), "   ", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindValidation, sendErr.Kind)
	assert.Equal(t, 0, fake.streamCalls, "no network call for empty input")
	assert.True(t, st.Active().IsEmpty(), "nothing appended for empty input")
}

func TestSend_StreamingHappyPath(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{chunks: []string{"Hel", "lo", " there"}, persister: p}
	eng := New(fake, st, testOptions(true))

	var deltas strings.Builder
	reply, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, func(token string) {
		deltas.WriteString(token)
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there", reply.Content)
	assert.Equal(t, "Hello there", deltas.String())
	assert.False(t, reply.IsStreaming)
	assert.Equal(t, StateCompleted, eng.State())

	conv := st.Active()
	require.Equal(t, 2, conv.MessageCount())
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "hi", conv.GetTitle(), "first message titles the conversation")
}

func TestSend_UserMessagePersistedBeforeNetwork(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{chunks: []string{"ok"}, persister: p}
	eng := New(fake, st, testOptions(true))

	before := p.saves
	_, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)
	require.NoError(t, err)

	assert.Greater(t, fake.savesAtCall, before,
		"user message must hit the persister before the request is made")
}

func TestSend_OneShotSharesPipeline(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{chatText: "single reply"}
	eng := New(fake, st, testOptions(false))

	var deltas strings.Builder
	reply, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, func(token string) {
		deltas.WriteString(token)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fake.chatCalls)
	assert.Equal(t, 0, fake.streamCalls)
	assert.Equal(t, "single reply", reply.Content)
	assert.Equal(t, "single reply", deltas.String(), "one-shot still delivers through the delta callback")
	assert.Equal(t, 2, st.Active().MessageCount())
}

func TestSend_AuthErrorClassified(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{streamErr: openrouter.ErrAuthFailed}
	eng := New(fake, st, testOptions(true))

	_, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindAuth, sendErr.Kind)
	assert.Contains(t, sendErr.UserMessage(), "API key")
	assert.Equal(t, StateFailed, eng.State())
	assert.Equal(t, 1, st.Active().MessageCount(), "user message kept, no assistant message")
}

func TestSend_RateLimitClassified(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{streamErr: openrouter.ErrRateLimited}
	eng := New(fake, st, testOptions(true))

	_, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindRateLimit, sendErr.Kind)
	assert.Contains(t, sendErr.UserMessage(), "Rate limit")
}

func TestSend_PartialReplyKeptOnMidStreamFailure(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{
		chunks:    []string{"partial tex"},
		streamErr: errors.New("connection reset"),
	}
	eng := New(fake, st, testOptions(true))

	reply, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)
	require.Error(t, err)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindNetwork, sendErr.Kind)

	require.NotNil(t, reply)
	assert.Equal(t, "partial tex", reply.Content)

	conv := st.Active()
	require.Equal(t, 2, conv.MessageCount(), "partial reply is persisted")
	assert.Equal(t, "partial tex", conv.Messages[1].Content)
}

func TestSend_CancelIsSilent(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{
		chunks:    []string{"cut sho"},
		streamErr: fmt.Errorf("request failed: %w", context.Canceled),
	}
	eng := New(fake, st, testOptions(true))

	reply, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindValidation, sendErr.Kind, "user-initiated cancel gets no error bubble")

	// Text received before the cancel is kept and persisted.
	require.NotNil(t, reply)
	assert.Equal(t, "cut sho", reply.Content)
	assert.Equal(t, 2, st.Active().MessageCount())
}

func TestSend_EmptyReplyFails(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	fake := &fakeCompleter{chunks: nil}
	eng := New(fake, st, testOptions(true))

	_, err := eng.Send(context.Background(), st.ActiveID(), "hi", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorIs(t, err, ErrEmptyReply)
	assert.Equal(t, 1, st.Active().MessageCount(), "no empty assistant message appended")
}

func TestSend_WireIncludesSystemHistoryAndAnnotatedTurn(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	id := st.ActiveID()

	// Seed fifteen prior messages so the window clips.
	for i := 0; i < 15; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		require.NoError(t, st.AppendMessage(id, model.NewMessage(role, strings.Repeat("m", i+1))))
	}

	fake := &fakeCompleter{chunks: []string{"ok"}}
	eng := New(fake, st, testOptions(true))

	atts := []model.Attachment{
		model.NewFileAttachment("notes.txt", "text/plain", 12),
		model.NewFileAttachment("data.csv", "text/csv", 40),
	}
	_, err := eng.Send(context.Background(), id, "look at these", atts, nil)
	require.NoError(t, err)

	// System prompt, ten history messages, the new turn.
	require.Len(t, fake.gotWire, 12)
	assert.Equal(t, "system", fake.gotWire[0].Role)

	last := fake.gotWire[len(fake.gotWire)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "look at these [Note: User attached files: notes.txt, data.csv]", last.Content)

	// Stored message keeps the raw text; annotation is wire-only.
	conv := st.Active()
	stored := conv.Messages[conv.MessageCount()-2]
	assert.Equal(t, "look at these", stored.Content)
	assert.Len(t, stored.Attachments, 2)
}

func TestSend_UnknownConversation(t *testing.T) {
	p := &memPersister{}
	st := store.New(p)
	eng := New(&fakeCompleter{}, st, testOptions(true))

	_, err := eng.Send(context.Background(), "chat_missing_x", "hi", nil, nil)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindValidation, sendErr.Kind)
	assert.ErrorIs(t, err, store.ErrConversationNotFound)
}
