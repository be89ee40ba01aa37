// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "errors"

var (
	// ErrConversationNotFound indicates an unknown conversation ID.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrEmptyTitle indicates a rename with a blank title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// StoreError wraps a store failure with the operation and ID involved.
// Callers treat these as validation errors: log, never surface, never
// mutate state.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return "store: " + e.Op + ": " + e.Err.Error()
	}
	return "store: " + e.Op + " " + e.ID + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match against the wrapped sentinel.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
