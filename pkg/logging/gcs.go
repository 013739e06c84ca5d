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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// flushThreshold is the buffered entry count that triggers an automatic
// flush from Export.
const flushThreshold = 256

// GCSExporter ships log entries to a Google Cloud Storage bucket as
// JSON-lines objects. Entries buffer in memory; each Flush writes one
// object named {prefix/}{service}_{RFC3339 timestamp}.jsonl so repeated
// flushes never overwrite each other.
type GCSExporter struct {
	mu      sync.Mutex
	buf     []Entry
	service string
	bucket  string
	prefix  string

	client    *storage.Client
	newWriter func(ctx context.Context, object string) io.WriteCloser
}

// NewGCSExporter creates an exporter writing under gs://bucket/prefix.
//
// If saKeyPath is non-empty it must point at a service account key file;
// otherwise application default credentials are used.
func NewGCSExporter(ctx context.Context, bucket, prefix, service, saKeyPath string) (*GCSExporter, error) {
	var opts []option.ClientOption
	if saKeyPath != "" {
		if _, err := os.Stat(saKeyPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", saKeyPath)
		}
		opts = append(opts, option.WithCredentialsFile(saKeyPath))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	e := &GCSExporter{
		service: service,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		client:  client,
	}
	e.newWriter = func(ctx context.Context, object string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = "application/jsonl"
		return w
	}
	return e, nil
}

// Export buffers the entry and flushes once the buffer fills. It never
// performs network I/O for an under-threshold buffer.
func (e *GCSExporter) Export(ctx context.Context, entry Entry) error {
	e.mu.Lock()
	e.buf = append(e.buf, entry)
	full := len(e.buf) >= flushThreshold
	e.mu.Unlock()
	if full {
		return e.Flush(ctx)
	}
	return nil
}

// Flush writes every buffered entry to a new object and empties the
// buffer. A write failure puts the entries back so the next flush
// retries them.
func (e *GCSExporter) Flush(ctx context.Context) error {
	e.mu.Lock()
	pending := e.buf
	e.buf = nil
	e.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	w := e.newWriter(ctx, e.objectName(time.Now().UTC()))
	enc := json.NewEncoder(w)
	for _, entry := range pending {
		if err := enc.Encode(entryRecord(entry)); err != nil {
			w.Close()
			e.restore(pending)
			return fmt.Errorf("encode log entry: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		e.restore(pending)
		return fmt.Errorf("write log object to bucket %s: %w", e.bucket, err)
	}
	return nil
}

// Close flushes any remaining entries and releases the client.
func (e *GCSExporter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	flushErr := e.Flush(ctx)
	if e.client != nil {
		if err := e.client.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

func (e *GCSExporter) objectName(now time.Time) string {
	name := fmt.Sprintf("%s_%s.jsonl", e.service, now.Format("2006-01-02T15-04-05.000Z"))
	if e.prefix == "" {
		return name
	}
	return e.prefix + "/" + name
}

func (e *GCSExporter) restore(pending []Entry) {
	e.mu.Lock()
	e.buf = append(pending, e.buf...)
	e.mu.Unlock()
}

// entryRecord flattens an Entry into the JSON shape written to GCS.
func entryRecord(entry Entry) map[string]any {
	record := map[string]any{
		"time":    entry.Timestamp.Format(time.RFC3339Nano),
		"level":   entry.Level.String(),
		"msg":     entry.Message,
		"service": entry.Service,
	}
	for k, v := range entry.Attrs {
		record[k] = v
	}
	return record
}

var _ Exporter = (*GCSExporter)(nil)
