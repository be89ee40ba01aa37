// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Well-known settings keys.
const (
	KeyConversations   = "uncensoredai_chats"
	KeySidebarExpanded = "sidebarExpanded"
	KeyAPIKey          = "openrouter_api_key"
)

// ErrKeyNotFound indicates the key has never been written.
var ErrKeyNotFound = errors.New("storage: key not found")

// KV is a small key/value store backed by SQLite.
type KV struct {
	db *sql.DB
}

// OpenKV opens (or creates) the database at path.
func OpenKV(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &KV{db: db}, nil
}

// Get returns the value stored under key.
func (kv *KV) Get(key string) ([]byte, error) {
	var value []byte
	err := kv.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KV) Set(key string, value []byte) error {
	_, err := kv.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (kv *KV) Delete(key string) error {
	if _, err := kv.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// GetString returns a string value, with ok reporting presence.
func (kv *KV) GetString(key string) (string, bool) {
	value, err := kv.Get(key)
	if err != nil {
		return "", false
	}
	return string(value), true
}

// SetString stores a string value.
func (kv *KV) SetString(key, value string) error {
	return kv.Set(key, []byte(value))
}

// GetBool returns a boolean setting, or def when absent or unreadable.
func (kv *KV) GetBool(key string, def bool) bool {
	value, ok := kv.GetString(key)
	if !ok {
		return def
	}
	return value == "true"
}

// SetBool stores a boolean setting.
func (kv *KV) SetBool(key string, value bool) error {
	if value {
		return kv.SetString(key, "true")
	}
	return kv.SetString(key, "false")
}

// Close closes the underlying database.
func (kv *KV) Close() error {
	return kv.db.Close()
}
