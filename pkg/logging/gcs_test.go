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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// memObject captures one "uploaded" object for assertions.
type memObject struct {
	name string
	buf  bytes.Buffer
	err  error
}

func (o *memObject) Write(p []byte) (int, error) { return o.buf.Write(p) }
func (o *memObject) Close() error                { return o.err }

// memExporter builds a GCSExporter whose writes land in memory.
func memExporter(objects *[]*memObject, closeErr error) *GCSExporter {
	e := &GCSExporter{service: "testsvc", bucket: "test-bucket", prefix: "logs"}
	e.newWriter = func(_ context.Context, object string) io.WriteCloser {
		o := &memObject{name: object, err: closeErr}
		*objects = append(*objects, o)
		return o
	}
	return e
}

func TestGCSExporterFlush(t *testing.T) {
	var objects []*memObject
	e := memExporter(&objects, nil)

	entry := Entry{
		Timestamp: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		Level:     slog.LevelWarn,
		Message:   "disk almost full",
		Service:   "testsvc",
		Attrs:     map[string]any{"free_mb": 12},
	}
	if err := e.Export(context.Background(), entry); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(objects) != 0 {
		t.Fatal("Export below threshold must not write")
	}

	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("expected one object, got %d", len(objects))
	}
	if !strings.HasPrefix(objects[0].name, "logs/testsvc_") ||
		!strings.HasSuffix(objects[0].name, ".jsonl") {
		t.Errorf("object name = %q", objects[0].name)
	}

	var record map[string]any
	if err := json.Unmarshal(objects[0].buf.Bytes(), &record); err != nil {
		t.Fatalf("object is not JSON lines: %v", err)
	}
	if record["msg"] != "disk almost full" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "WARN" {
		t.Errorf("level = %v", record["level"])
	}
	if record["free_mb"] != float64(12) {
		t.Errorf("free_mb = %v", record["free_mb"])
	}

	// Buffer drained: a second flush writes nothing.
	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("empty Flush failed: %v", err)
	}
	if len(objects) != 1 {
		t.Error("empty flush must not create an object")
	}
}

func TestGCSExporterAutoFlushAtThreshold(t *testing.T) {
	var objects []*memObject
	e := memExporter(&objects, nil)

	for i := 0; i < flushThreshold; i++ {
		if err := e.Export(context.Background(), Entry{Message: "tick"}); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
	}
	if len(objects) != 1 {
		t.Fatalf("expected one auto-flushed object, got %d", len(objects))
	}
	lines := strings.Count(objects[0].buf.String(), "\n")
	if lines != flushThreshold {
		t.Errorf("object holds %d lines, want %d", lines, flushThreshold)
	}
}

func TestGCSExporterFlushFailureRetains(t *testing.T) {
	var objects []*memObject
	e := memExporter(&objects, errors.New("upload rejected"))

	_ = e.Export(context.Background(), Entry{Message: "keep me"})
	if err := e.Flush(context.Background()); err == nil {
		t.Fatal("expected flush error")
	}

	// Next flush against a working writer retries the retained entry.
	var retried []*memObject
	e.newWriter = func(_ context.Context, object string) io.WriteCloser {
		o := &memObject{name: object}
		retried = append(retried, o)
		return o
	}
	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("retry flush failed: %v", err)
	}
	if len(retried) != 1 || !strings.Contains(retried[0].buf.String(), "keep me") {
		t.Fatal("retained entry was not retried")
	}
}

func TestGCSExporterObjectNameWithoutPrefix(t *testing.T) {
	e := &GCSExporter{service: "testsvc"}
	name := e.objectName(time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	if strings.Contains(name, "/") {
		t.Errorf("prefix-less name should be flat, got %q", name)
	}
}
