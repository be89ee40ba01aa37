// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations and user settings in SQLite.
//
// The database is a single key/value table. Conversations serialize to
// one JSON document under the "uncensoredai_chats" key; UI preferences
// and the (encrypted) API key occupy their own keys. Persistence is
// deliberately forgiving: save failures are logged and swallowed, and
// corrupt state loads as empty rather than refusing to start.
package storage
