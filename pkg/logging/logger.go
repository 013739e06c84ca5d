// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging configures structured logging for PolicyDesk
// components.
//
// # Description
//
// The package is a thin layer over slog with two additions: fan-out to
// multiple destinations (stderr plus an optional JSON log file), and an
// Exporter hook for shipping entries to an external sink. The service
// and the CLI both call Init once at startup and then use the slog
// package-level functions everywhere else.
//
// # Basic Usage
//
//	if err := logging.Init(logging.ConfigFromEnv()); err != nil {
//	    log.Fatal(err)
//	}
//	slog.Info("starting", "port", port)
//
// # Thread Safety
//
// Handlers installed by Init are safe for concurrent use; Init itself
// should only be called once, from main.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config controls where and how log entries are written. The zero value
// means human-readable text on stderr at Info level.
type Config struct {
	// Level is the minimum severity: "debug", "info", "warn", "error".
	Level string

	// Service is attached to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON. File output is always JSON.
	JSON bool

	// LogDir enables file logging. The file is named
	// {service}_{YYYY-MM-DD}.log and the directory is created if
	// missing. Supports a leading ~ for the home directory.
	LogDir string

	// Exporter, when set, receives every entry asynchronously. Export
	// failures are dropped rather than disrupting the caller.
	Exporter Exporter
}

// ConfigFromEnv reads POLICYDESK_LOG_LEVEL, POLICYDESK_LOG_JSON, and
// POLICYDESK_LOG_DIR. Unset variables fall back to info-level text on
// stderr.
func ConfigFromEnv() Config {
	return Config{
		Level:   os.Getenv("POLICYDESK_LOG_LEVEL"),
		Service: "policydesk",
		JSON:    strings.EqualFold(os.Getenv("POLICYDESK_LOG_JSON"), "true"),
		LogDir:  os.Getenv("POLICYDESK_LOG_DIR"),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "", "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init builds the handler stack from cfg and installs it as the slog
// default. A file-open failure is an error; everything after Init
// assumes its destinations exist.
func Init(cfg Config) error {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handlers []slog.Handler
	if cfg.JSON {
		handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
	}

	if cfg.LogDir != "" {
		dir := expandPath(cfg.LogDir)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create log directory %s: %w", dir, err)
		}
		name := cfg.Service
		if name == "" {
			name = "policydesk"
		}
		path := filepath.Join(dir,
			fmt.Sprintf("%s_%s.log", name, time.Now().Format("2006-01-02")))
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", path, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}
	if cfg.Exporter != nil {
		handler = &exportHandler{next: handler, exporter: cfg.Exporter, service: cfg.Service}
	}
	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// Exporter ships log entries to an external sink (object storage, a log
// aggregator, an OTLP collector). Implementations buffer internally;
// Export must not block the logging call path.
type Exporter interface {
	Export(ctx context.Context, entry Entry) error
	Flush(ctx context.Context) error
	Close() error
}

// Entry is the exporter-facing view of one log record.
type Entry struct {
	Timestamp time.Time
	Level     slog.Level
	Message   string
	Service   string
	Attrs     map[string]any
}

// multiHandler fans a record out to every enabled handler.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// exportHandler forwards records to the next handler and mirrors them
// to the exporter without blocking the caller.
type exportHandler struct {
	next     slog.Handler
	exporter Exporter
	service  string
}

func (h *exportHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *exportHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	entry := Entry{
		Timestamp: r.Time,
		Level:     r.Level,
		Message:   r.Message,
		Service:   h.service,
		Attrs:     attrs,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.exporter.Export(ctx, entry)
	}()
	return h.next.Handle(ctx, r)
}

func (h *exportHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &exportHandler{next: h.next.WithAttrs(attrs), exporter: h.exporter, service: h.service}
}

func (h *exportHandler) WithGroup(name string) slog.Handler {
	return &exportHandler{next: h.next.WithGroup(name), exporter: h.exporter, service: h.service}
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// BufferedExporter collects entries in memory. It exists for tests.
type BufferedExporter struct {
	mu      sync.Mutex
	entries []Entry
}

func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{entries: make([]Entry, 0, 100)}
}

func (e *BufferedExporter) Export(_ context.Context, entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

func (e *BufferedExporter) Flush(context.Context) error { return nil }
func (e *BufferedExporter) Close() error                { return nil }

// Entries returns a copy of everything exported so far.
func (e *BufferedExporter) Entries() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]Entry, len(e.entries))
	copy(result, e.entries)
	return result
}

var _ Exporter = (*BufferedExporter)(nil)
