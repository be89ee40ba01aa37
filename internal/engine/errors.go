// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/AppleLamps/testing-uncensored/internal/openrouter"
)

// Kind classifies a send failure so the presentation layer can choose
// wording without inspecting transport errors.
type Kind int

const (
	// KindNetwork covers transport failures and unclassified API errors.
	KindNetwork Kind = iota
	// KindAuth covers a missing, invalid or expired API key.
	KindAuth
	// KindRateLimit covers throttling by the provider.
	KindRateLimit
	// KindValidation covers rejected input. Presentation treats these
	// as silent no-ops.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindValidation:
		return "validation"
	default:
		return "network"
	}
}

var (
	// ErrEmptyMessage indicates a send with no text and no attachments.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrEmptyReply indicates the model returned no text at all.
	ErrEmptyReply = errors.New("model returned an empty reply")
)

// SendError wraps a failure with its classification.
type SendError struct {
	Kind Kind
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Kind, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown in place of the reply.
func (e *SendError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "Invalid API key. Please check your OpenRouter API key in settings."
	case KindRateLimit:
		return "Rate limit exceeded. Please wait a moment and try again."
	default:
		return "Sorry, I encountered an error. Please try again."
	}
}

// classify maps transport errors onto presentation kinds.
func classify(err error) Kind {
	switch {
	case errors.Is(err, context.Canceled):
		// The user stopped the stream; no error bubble for that.
		return KindValidation
	case errors.Is(err, openrouter.ErrNotConfigured),
		errors.Is(err, openrouter.ErrAuthFailed):
		return KindAuth
	case errors.Is(err, openrouter.ErrRateLimited):
		return KindRateLimit
	default:
		return KindNetwork
	}
}
