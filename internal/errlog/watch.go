// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errlog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reopens a File when its primary log is removed or renamed by
// someone else, such as logrotate.
type Watcher struct {
	file    *File
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// onReopen is called after each reopen; tests use it.
	onReopen func()

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher creates a watcher on file's directory.
func NewWatcher(file *File, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(file.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch log directory: %w", err)
	}

	return &Watcher{
		file:    file,
		watcher: fsw,
		logger:  logger.With(slog.String("component", "errlog"), slog.String("path", file.Path())),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins processing events in the background.
func (w *Watcher) Start(ctx context.Context) {
	go w.eventLoop(ctx)
}

// Stop stops the watcher and waits for its event loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
	})
	<-w.doneCh
	return err
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			recordError("watch")
			w.logger.Warn("log directory watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.file.Path() {
		return
	}
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	reopened, err := w.file.ReopenIfMissing()
	if err != nil {
		w.logger.Error("failed to reopen error log", "error", err)
		return
	}
	if !reopened {
		return
	}

	recordExternalReopen()
	w.logger.Debug("reopened error log after external rotation", "op", event.Op.String())
	if w.onReopen != nil {
		w.onReopen()
	}
}
