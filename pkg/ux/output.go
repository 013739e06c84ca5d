// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the PolicyDesk CLI.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// PolicyDesk color palette - deep indigo with amber accents
var (
	ColorIndigoBright  = lipgloss.Color("#7C83F7") // highlights, success
	ColorIndigoPrimary = lipgloss.Color("#5A63E8") // main brand color
	ColorIndigoDeep    = lipgloss.Color("#3B43B8") // borders, accents
	ColorSlate         = lipgloss.Color("#4A4E69") // muted text, borders

	ColorSuccess = lipgloss.Color("#4CD7A0")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorIndigoBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorIndigoPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorIndigoBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorIndigoDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),

	TableHeader: lipgloss.NewStyle().Bold(true).
		Foreground(ColorIndigoBright).Padding(0, 1),
	TableCell: lipgloss.NewStyle().Padding(0, 1),
}

// Title prints a styled title.
func Title(text string) {
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a styled success message.
func Success(text string) {
	fmt.Println(Styles.Success.Render("✓ " + text))
}

// Warn prints a styled warning to stderr.
func Warn(text string) {
	fmt.Fprintln(os.Stderr, Styles.Warning.Render("⚠ "+text))
}

// Fail prints a styled error to stderr.
func Fail(text string) {
	fmt.Fprintln(os.Stderr, Styles.Error.Render("✗ "+text))
}

// Muted prints de-emphasized text.
func Muted(text string) {
	fmt.Println(Styles.Muted.Render(text))
}
