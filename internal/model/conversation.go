// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"time"

	"github.com/AppleLamps/testing-uncensored/internal/util"
)

const (
	// AutoTitleRunes is how much of the first user message becomes the title.
	AutoTitleRunes = 30

	// MaxTitleRunes caps manually assigned titles.
	MaxTitleRunes = 50
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat thread with its metadata.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Messages  []*Message `json:"messages"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(now),
		Title:     "New Chat",
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// generateConversationID builds an ID of the form chat_<unix-millis>_<random>.
// The random suffix is base36 so IDs stay short and filename-safe.
func generateConversationID(now time.Time) string {
	var buf [8]byte
	rand.Read(buf[:])
	suffix := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	return "chat_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message, bumps UpdatedAt and derives the title from
// the first user message when none has been assigned yet.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// History returns the last n user/assistant exchanges before the final
// message, in API wire order. It is the context window sent upstream:
// the trailing message is excluded because the caller sends it separately
// as the new turn.
func (c *Conversation) History(turns int) []*Message {
	if turns <= 0 || len(c.Messages) < 2 {
		return nil
	}
	end := len(c.Messages) - 1
	start := end - turns
	if start < 0 {
		start = 0
	}
	out := make([]*Message, 0, end-start)
	for _, msg := range c.Messages[start:end] {
		if msg.Role == RoleUser || msg.Role == RoleAssistant {
			out = append(out, msg)
		}
	}
	return out
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle derives the title from the first user message.
func (c *Conversation) updateTitle() {
	if c.Title != "" && c.Title != "New Chat" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			if util.RuneLen(msg.Content) > AutoTitleRunes {
				c.Title = util.TruncateRunesNoEllipsis(msg.Content, AutoTitleRunes) + "..."
			} else if msg.Content != "" {
				c.Title = msg.Content
			}
			return
		}
	}
}

// SetTitle assigns a title, capped at MaxTitleRunes.
func (c *Conversation) SetTitle(title string) {
	c.Title = util.TruncateRunesNoEllipsis(title, MaxTitleRunes)
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Chat"
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		msgCopy := *msg
		msgCopy.Attachments = append([]Attachment(nil), msg.Attachments...)
		clone.Messages[i] = &msgCopy
	}
	return clone
}
