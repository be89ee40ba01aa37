// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Conversation: a chat thread with messages and metadata
//   - Message: single message with role, content, timestamp and attachments
//   - Role: message role enumeration (user, assistant, system)
//   - Attachment: file metadata annotated onto outbound prompts
//
// Conversation IDs use the form chat_<unix-millis>_<random base36 suffix>.
// Message IDs are UUIDs. Titles derive from the first user message (30
// characters plus an ellipsis) unless assigned explicitly, which caps at
// 50 characters.
package model
