// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AppleLamps/testing-uncensored/internal/model"
)

// memPersister keeps state in memory and counts saves.
type memPersister struct {
	state map[string]*model.Conversation
	saves int
}

func newMemPersister() *memPersister {
	return &memPersister{state: make(map[string]*model.Conversation)}
}

func (p *memPersister) SaveConversations(conversations map[string]*model.Conversation) {
	p.state = make(map[string]*model.Conversation, len(conversations))
	for id, conv := range conversations {
		p.state[id] = conv.Clone()
	}
	p.saves++
}

func (p *memPersister) LoadConversations() map[string]*model.Conversation {
	out := make(map[string]*model.Conversation, len(p.state))
	for id, conv := range p.state {
		out[id] = conv.Clone()
	}
	return out
}

func TestNew_FreshRunCreatesActiveConversation(t *testing.T) {
	p := newMemPersister()
	s := New(p)

	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
	if s.Active() == nil {
		t.Fatal("Active() = nil on fresh store")
	}
	if p.saves == 0 {
		t.Error("fresh conversation was not persisted")
	}
}

func TestNew_RestoresMostRecentAsActive(t *testing.T) {
	p := newMemPersister()
	old := model.NewConversation()
	old.UpdatedAt = time.Now().Add(-time.Hour)
	recent := model.NewConversation()
	recent.UpdatedAt = time.Now()
	p.state[old.ID] = old
	p.state[recent.ID] = recent

	s := New(p)
	if s.ActiveID() != recent.ID {
		t.Errorf("ActiveID() = %s, want most recently updated %s", s.ActiveID(), recent.ID)
	}
}

func TestStore_CreateAndSwitch(t *testing.T) {
	s := New(newMemPersister())
	first := s.Active()

	second := s.Create()
	if s.ActiveID() != second.ID {
		t.Error("Create() should activate the new conversation")
	}

	if err := s.SwitchTo(first.ID); err != nil {
		t.Fatalf("SwitchTo() error = %v", err)
	}
	if s.ActiveID() != first.ID {
		t.Error("SwitchTo() did not change the active conversation")
	}

	err := s.SwitchTo("chat_0_missing")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("SwitchTo(unknown) error = %v, want ErrConversationNotFound", err)
	}
	if s.ActiveID() != first.ID {
		t.Error("failed switch must not change the active conversation")
	}
}

func TestStore_DeleteActivatesSurvivor(t *testing.T) {
	s := New(newMemPersister())
	first := s.Active()
	second := s.Create()

	if err := s.Delete(second.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.ActiveID() != first.ID {
		t.Errorf("ActiveID() = %s, want survivor %s", s.ActiveID(), first.ID)
	}
}

func TestStore_DeleteLastCreatesFresh(t *testing.T) {
	s := New(newMemPersister())
	only := s.Active()

	if err := s.Delete(only.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want a fresh conversation", s.Count())
	}
	if s.ActiveID() == only.ID {
		t.Error("fresh conversation should have a new ID")
	}
}

func TestStore_DeleteInactiveKeepsActive(t *testing.T) {
	s := New(newMemPersister())
	first := s.Active()
	second := s.Create()

	if err := s.Delete(first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.ActiveID() != second.ID {
		t.Error("deleting an inactive conversation must not move the pointer")
	}
}

func TestStore_Rename(t *testing.T) {
	s := New(newMemPersister())
	id := s.ActiveID()

	if err := s.Rename(id, "  Project ideas  "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if got := s.Active().Title; got != "Project ideas" {
		t.Errorf("Title = %q, want trimmed %q", got, "Project ideas")
	}

	err := s.Rename(id, "   ")
	if !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("Rename(blank) error = %v, want ErrEmptyTitle", err)
	}
	if got := s.Active().Title; got != "Project ideas" {
		t.Error("blank rename must be a no-op")
	}
}

func TestStore_AppendMessagePersists(t *testing.T) {
	p := newMemPersister()
	s := New(p)
	id := s.ActiveID()
	savesBefore := p.saves

	if err := s.AppendMessage(id, model.NewUserMessage("hello")); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if p.saves <= savesBefore {
		t.Error("AppendMessage must persist")
	}
	if p.state[id].MessageCount() != 1 {
		t.Errorf("persisted message count = %d, want 1", p.state[id].MessageCount())
	}

	err := s.AppendMessage("chat_0_missing", model.NewUserMessage("x"))
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("AppendMessage(unknown) error = %v, want ErrConversationNotFound", err)
	}
}

func TestStore_ListOrdering(t *testing.T) {
	s := New(newMemPersister())
	first := s.Active()
	second := s.Create()
	time.Sleep(2 * time.Millisecond)

	// Touching the older conversation moves it to the front.
	if err := s.AppendMessage(first.ID, model.NewUserMessage("bump")); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("List() order = [%s %s], want bumped conversation first", list[0].ID, list[1].ID)
	}
}

func TestStore_ClearAll(t *testing.T) {
	p := newMemPersister()
	s := New(p)
	s.Create()
	s.Create()

	fresh := s.ClearAll()
	if s.Count() != 1 {
		t.Fatalf("Count() after ClearAll = %d, want 1", s.Count())
	}
	if s.ActiveID() != fresh.ID {
		t.Error("ClearAll should activate the fresh conversation")
	}
	if len(p.state) != 1 {
		t.Errorf("persisted state has %d conversations, want 1", len(p.state))
	}
}

func TestStore_AccessorsReturnSnapshots(t *testing.T) {
	s := New(newMemPersister())
	id := s.ActiveID()

	before := s.Active()
	if err := s.AppendMessage(id, model.NewUserMessage("first")); err != nil {
		t.Fatalf("AppendMessage() error = %v", err)
	}
	if before.MessageCount() != 0 {
		t.Error("earlier snapshot must not see a later append")
	}

	// Scribbling on a snapshot must not reach the store.
	snap, ok := s.Get(id)
	if !ok {
		t.Fatal("Get() missing active conversation")
	}
	snap.Title = "scribbled"
	snap.Messages[0].Content = "scribbled"
	if got := s.Active(); got.GetTitle() == "scribbled" || got.Messages[0].Content == "scribbled" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

// A renderer reads the active conversation on its own goroutine while a
// send appends on another. Snapshots keep the two from sharing memory;
// run with -race.
func TestStore_ConcurrentReadDuringAppend(t *testing.T) {
	s := New(newMemPersister())
	id := s.ActiveID()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			if err := s.AppendMessage(id, model.NewUserMessage(fmt.Sprintf("message %d", i))); err != nil {
				t.Errorf("AppendMessage() error = %v", err)
				return
			}
		}
	}()

	for {
		for _, msg := range s.Active().Messages {
			_ = msg.Content
		}
		for _, conv := range s.List() {
			_ = conv.GetTitle()
		}
		select {
		case <-done:
			if got := s.Active().MessageCount(); got != 500 {
				t.Fatalf("MessageCount() = %d, want 500", got)
			}
			return
		default:
		}
	}
}

func TestStore_RoundTripThroughPersister(t *testing.T) {
	p := newMemPersister()
	s := New(p)
	id := s.ActiveID()
	s.AppendMessage(id, model.NewUserMessage("remember this"))

	// A second store over the same persister sees the same state.
	s2 := New(p)
	conv, ok := s2.Get(id)
	if !ok {
		t.Fatal("conversation missing after reload")
	}
	if conv.MessageCount() != 1 || conv.Messages[0].Content != "remember this" {
		t.Error("reloaded conversation lost its message")
	}
}
