// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds all chat state: the conversation registry and the
// active-conversation pointer. Every mutation flows through here and
// schedules a persist, so presentation layers render from this state
// and never own any of it. Accessors hand out deep snapshots; a
// renderer never shares memory with a send appending on another
// goroutine.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/AppleLamps/testing-uncensored/internal/model"
)

// Persister saves and restores the conversation map. Save failures are
// the persister's problem to log; the store never sees them.
type Persister interface {
	SaveConversations(map[string]*model.Conversation)
	LoadConversations() map[string]*model.Conversation
}

// Store is the single source of truth for conversations.
type Store struct {
	mu            sync.Mutex
	conversations map[string]*model.Conversation
	activeID      string
	persister     Persister
}

// New loads persisted conversations and ensures there is always an
// active conversation, creating a fresh one on first run.
func New(p Persister) *Store {
	s := &Store{
		conversations: p.LoadConversations(),
		persister:     p,
	}

	if len(s.conversations) == 0 {
		conv := model.NewConversation()
		s.conversations[conv.ID] = conv
		s.activeID = conv.ID
		s.persist()
		return s
	}

	s.activeID = s.mostRecentLocked()
	return s
}

// Create starts a new empty conversation and makes it active.
func (s *Store) Create() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.conversations[conv.ID] = conv
	s.activeID = conv.ID
	s.persist()
	return conv.Clone()
}

// SwitchTo makes the given conversation active.
func (s *Store) SwitchTo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return &StoreError{Op: "switch", ID: id, Err: ErrConversationNotFound}
	}
	s.activeID = id
	return nil
}

// Delete removes a conversation. When the active one goes away, the
// most recently updated survivor takes over; with none left a fresh
// conversation is created so the app never has an empty registry.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return &StoreError{Op: "delete", ID: id, Err: ErrConversationNotFound}
	}
	delete(s.conversations, id)

	if s.activeID == id {
		if len(s.conversations) == 0 {
			conv := model.NewConversation()
			s.conversations[conv.ID] = conv
			s.activeID = conv.ID
		} else {
			s.activeID = s.mostRecentLocked()
		}
	}

	s.persist()
	return nil
}

// Rename assigns a new title. Blank input is a validation no-op error;
// the title caps at model.MaxTitleRunes.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return &StoreError{Op: "rename", ID: id, Err: ErrConversationNotFound}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return &StoreError{Op: "rename", ID: id, Err: ErrEmptyTitle}
	}

	conv.SetTitle(title)
	s.persist()
	return nil
}

// AppendMessage adds a message to a conversation. This is the only way
// content enters the store.
func (s *Store) AppendMessage(id string, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return &StoreError{Op: "append", ID: id, Err: ErrConversationNotFound}
	}

	conv.AddMessage(msg)
	s.persist()
	return nil
}

// ClearAll deletes every conversation and starts a fresh one. Callers
// own the confirmation dance; by the time this runs the decision is
// final.
func (s *Store) ClearAll() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make(map[string]*model.Conversation)
	conv := model.NewConversation()
	s.conversations[conv.ID] = conv
	s.activeID = conv.ID
	s.persist()
	return conv.Clone()
}

// List returns a snapshot of the conversations ordered by most recent
// update first.
func (s *Store) List() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Active returns a snapshot of the active conversation.
func (s *Store) Active() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[s.activeID].Clone()
}

// ActiveID returns the active conversation's ID.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a snapshot of a conversation by ID, with ok reporting
// presence.
func (s *Store) Get(id string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Count returns the number of conversations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Persist saves the current state. Used after in-place message
// mutation, like finalizing a streamed reply.
func (s *Store) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
}

// persist writes through to the persister. Caller must hold mu.
func (s *Store) persist() {
	s.persister.SaveConversations(s.conversations)
}

// mostRecentLocked returns the ID of the most recently updated
// conversation. Caller must hold mu and guarantee a non-empty registry.
func (s *Store) mostRecentLocked() string {
	var bestID string
	for id, conv := range s.conversations {
		if bestID == "" || conv.UpdatedAt.After(s.conversations[bestID].UpdatedAt) {
			bestID = id
		}
	}
	return bestID
}
