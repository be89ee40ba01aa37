// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Uncensored AI"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// AttachmentKind distinguishes inline-previewable images from
// metadata-only files.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment describes a file the user attached to a message. Only the
// name travels to the model, as a text annotation on the outbound prompt.
// Image attachments always carry their preview bytes; other kinds carry
// metadata and never content.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	Name string         `json:"name"`
	MIME string         `json:"mime,omitempty"`
	Size int64          `json:"size,omitempty"`

	// Data holds the inline preview bytes for images. JSON encodes it
	// base64, so binary content survives the persistence round trip.
	Data []byte `json:"data,omitempty"`
}

// NewImageAttachment creates an image attachment with its preview bytes.
func NewImageAttachment(name, mime string, data []byte) Attachment {
	return Attachment{
		Kind: AttachmentImage,
		Name: name,
		MIME: mime,
		Size: int64(len(data)),
		Data: data,
	}
}

// NewFileAttachment creates a metadata-only attachment.
func NewFileAttachment(name, mime string, size int64) Attachment {
	return Attachment{
		Kind: AttachmentFile,
		Name: name,
		MIME: mime,
		Size: size,
	}
}

// AnnotateAttachments appends the attachment note the model sees.
// With no attachments the content is returned unchanged.
func AnnotateAttachments(content string, attachments []Attachment) string {
	if len(attachments) == 0 {
		return content
	}
	names := make([]string, len(attachments))
	for i, a := range attachments {
		names[i] = a.Name
	}
	return content + " [Note: User attached files: " + strings.Join(names, ", ") + "]"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Attachments the user included with this message.
	Attachments []Attachment `json:"attachments,omitempty"`

	// Upsell marks the synthetic welcome message carrying the upgrade
	// call-to-action. Never persisted.
	Upsell bool `json:"-"`

	// Streaming state, merged into Content on finalize.
	// PERFORMANCE: strings.Builder avoids quadratic allocations while tokens arrive.
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`
}

// NewMessage creates a message with a generated ID.
// UNICODE: content is normalized to NFC so equal-looking input compares equal.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   norm.NFC.String(content),
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message with optional attachments.
func NewUserMessage(content string, attachments ...Attachment) *Message {
	msg := NewMessage(RoleUser, content)
	msg.Attachments = attachments
	return msg
}

// NewAssistantMessage creates an empty assistant message in streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// AppendToken appends a streamed token. No-op once finalized.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// FinalizeStream merges streamed tokens into Content and ends streaming state.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.Content = norm.NFC.String(m.streamContent.String())
	m.streamContent.Reset()
	m.IsStreaming = false
}

// GetDisplayContent returns the content to display, streamed or final.
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// IsEmpty returns true if the message has no content yet.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}
