// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/charmbracelet/lipgloss"

// Shared color palette for CLI output, tuned for dark terminals.
const (
	colorPrimary = lipgloss.Color("#2DD4BF")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

var (
	// TitleStyle is for primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// ErrorStyle marks fatal failures.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorError)

	// WarningStyle marks non-fatal diagnostics.
	WarningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)
)
