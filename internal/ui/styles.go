// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the terminal interface: a sidebar of
// conversations, the message timeline, a composer and a streaming
// view. All colors use Lip Gloss AdaptiveColor for automatic
// light/dark detection.
package ui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Purple - Primary accent, assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, info, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, destructive confirmation
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, upsell note
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Surface and text tones.
var (
	Surface       = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
)

// Message bubble tones.
var (
	UserBubbleFg       = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder   = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
	AssistBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true)

	senderUserStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	senderAssistantStyle = lipgloss.NewStyle().
				Foreground(Purple).
				Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(UserBubbleBorder).
			Foreground(UserBubbleFg).
			PaddingLeft(1)

	assistantBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(AssistBubbleBorder).
				Foreground(AssistBubbleFg).
				PaddingLeft(1)

	errorBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), false, false, false, true).
				BorderForeground(Rose).
				Foreground(Rose).
				PaddingLeft(1)

	upsellStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(Overlay).
			PaddingRight(1)

	sidebarActiveStyle = lipgloss.NewStyle().
				Foreground(Cyan).
				Bold(true)

	sidebarItemStyle = lipgloss.NewStyle().
				Foreground(TextSecondary)

	confirmStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)
)
