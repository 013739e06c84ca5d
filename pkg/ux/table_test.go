// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Name", "City"},
		[][]string{
			{"Asha Verma", "Pune"},
			{"Salim Khan"},
		},
	)
	for _, want := range []string{"Name", "City", "Asha Verma", "Pune", "Salim Khan"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	// Header, separator, and one line per row.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable([]string{"A"}, nil)
	if !strings.Contains(out, "A") {
		t.Errorf("header missing: %s", out)
	}
}
