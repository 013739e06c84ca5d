// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTable lays out rows under a styled header, sizing each column to
// its widest cell. Rows shorter than the header are padded with empty
// cells; longer rows are truncated to the header width.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(Styles.TableHeader.Width(widths[i] + 2).Render(h))
	}
	b.WriteString("\n")
	for i := range headers {
		b.WriteString(Styles.Muted.Render(strings.Repeat("─", widths[i]+2)))
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i := 0; i < len(headers); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(Styles.TableCell.Width(widths[i] + 2).Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}
