// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("POLICYDESK_LOG_LEVEL", "debug")
	t.Setenv("POLICYDESK_LOG_JSON", "TRUE")
	t.Setenv("POLICYDESK_LOG_DIR", "/tmp/pd-logs")

	cfg := ConfigFromEnv()
	if cfg.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Level)
	}
	if !cfg.JSON {
		t.Error("JSON should be true")
	}
	if cfg.LogDir != "/tmp/pd-logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Service != "policydesk" {
		t.Errorf("Service = %q", cfg.Service)
	}
}

func TestInitWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	err := Init(Config{Level: "info", Service: "testsvc", LogDir: dir})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	slog.Info("file logging works", "key", "value")

	pattern := filepath.Join(dir, "testsvc_*.log")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file matching %s, got %v (err %v)", pattern, matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "file logging works") {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"service":"testsvc"`) {
		t.Errorf("log file missing service attribute: %s", data)
	}
}

func TestExporterReceivesEntries(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	exp := NewBufferedExporter()
	if err := Init(Config{Level: "info", Service: "testsvc", Exporter: exp}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	slog.Warn("exported entry", "code", 7)

	// Export runs on a goroutine; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(exp.Entries()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	entries := exp.Entries()
	if len(entries) == 0 {
		t.Fatal("exporter never received the entry")
	}
	e := entries[0]
	if e.Message != "exported entry" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Level != slog.LevelWarn {
		t.Errorf("Level = %v", e.Level)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %q", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q", got)
	}
}

func TestBufferedExporterCopy(t *testing.T) {
	exp := NewBufferedExporter()
	_ = exp.Export(context.Background(), Entry{Message: "one"})
	got := exp.Entries()
	got[0].Message = "mutated"
	if exp.Entries()[0].Message != "one" {
		t.Error("Entries must return a copy")
	}
}
