// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/AppleLamps/testing-uncensored/internal/model"
)

// RELIABILITY: persistence must never take a chat turn down with it.
// Save failures are logged and swallowed; unreadable state loads as
// empty so the app starts with a fresh slate instead of crashing.

// SaveConversations serializes the conversation map under KeyConversations.
// Errors are logged and swallowed.
func (kv *KV) SaveConversations(conversations map[string]*model.Conversation) {
	data, err := json.Marshal(conversations)
	if err != nil {
		log.Printf("storage: failed to encode conversations: %v", err)
		return
	}
	if err := kv.Set(KeyConversations, data); err != nil {
		log.Printf("storage: failed to save conversations: %v", err)
	}
}

// LoadConversations returns the stored conversation map. Missing or
// corrupt data yields an empty map; corruption is logged.
func (kv *KV) LoadConversations() map[string]*model.Conversation {
	data, err := kv.Get(KeyConversations)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			log.Printf("storage: failed to load conversations: %v", err)
		}
		return make(map[string]*model.Conversation)
	}

	var conversations map[string]*model.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		log.Printf("storage: discarding corrupt conversation data: %v", err)
		return make(map[string]*model.Conversation)
	}
	if conversations == nil {
		conversations = make(map[string]*model.Conversation)
	}
	return conversations
}
