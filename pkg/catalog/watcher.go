// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a file-backed catalog when the file changes on disk.
//
// # Description
//
// Watches the directory containing the catalog file (watching the
// directory rather than the file survives editors that replace the file
// via rename). Write and create events for the file are debounced so a
// burst of events from one save triggers a single reload. A reload that
// fails keeps the previous table and logs a warning.
//
// # Thread Safety
//
// Safe for concurrent use. Reloads happen on a single goroutine.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// defaultDebounce is how long to wait for further events after a change
// before reloading.
const defaultDebounce = 200 * time.Millisecond

// NewWatcher creates a watcher for a file-backed catalog.
//
// # Inputs
//
//   - c: The catalog to reload. Must have been created with Load.
//   - logger: Logger for reload outcomes. Must not be nil.
//
// # Outputs
//
//   - *Watcher: The watcher. Not running until Start is called.
//   - error - Non-nil if the catalog has no backing file or the
//     underlying fsnotify watcher cannot be created.
func NewWatcher(c *Catalog, logger *slog.Logger) (*Watcher, error) {
	if c.Source() == "" {
		return nil, errors.New("catalog has no backing file to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(c.Source())); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch catalog directory: %w", err)
	}
	return &Watcher{
		catalog:  c,
		watcher:  fw,
		logger:   logger,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.run()
}

// Stop halts the watcher and releases the fsnotify handle. Safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) run() {
	target := filepath.Clean(w.catalog.Source())
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.catalog.Reload(); err != nil {
				w.logger.Warn("catalog reload failed, keeping previous table",
					"path", target, "error", err)
				continue
			}
			w.logger.Info("catalog reloaded", "path", target)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}
