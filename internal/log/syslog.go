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

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// NoticeWriter accepts one already formatted message per call. *syslog.Writer
// satisfies it.
type NoticeWriter interface {
	Notice(msg string) error
}

// StreamNotice is a NoticeWriter that prefixes messages with a syslog-style
// tag and writes them to an io.Writer. It stands in for the system log when
// no syslog daemon is reachable.
type StreamNotice struct {
	W   io.Writer
	Tag string

	mu sync.Mutex
}

// Notice implements NoticeWriter.
func (s *StreamNotice) Notice(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.W, "%s[%d]: %s\n", s.Tag, os.Getpid(), msg)
	return err
}

// SyslogHandler formats records as logfmt lines and hands each one to a
// NoticeWriter. The timestamp is omitted because syslog adds its own.
type SyslogHandler struct {
	w    NoticeWriter
	mu   *sync.Mutex
	buf  *bytes.Buffer
	text slog.Handler
}

// NewSyslogHandler creates a handler writing to w at or above level.
func NewSyslogHandler(w NoticeWriter, level slog.Leveler) *SyslogHandler {
	buf := new(bytes.Buffer)
	return &SyslogHandler{
		w:   w,
		mu:  new(sync.Mutex),
		buf: buf,
		text: slog.NewTextHandler(buf, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		}),
	}
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// Enabled implements slog.Handler.
func (h *SyslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.text.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SyslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.text.Handle(ctx, r); err != nil {
		return err
	}
	return h.w.Notice(strings.TrimSuffix(h.buf.String(), "\n"))
}

// WithAttrs implements slog.Handler.
func (h *SyslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SyslogHandler{w: h.w, mu: h.mu, buf: h.buf, text: h.text.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *SyslogHandler) WithGroup(name string) slog.Handler {
	return &SyslogHandler{w: h.w, mu: h.mu, buf: h.buf, text: h.text.WithGroup(name)}
}

// OpenSyslog returns a syslog writer, or a tagged stderr writer when syslog
// cannot be reached. The returned error reports the dial failure; the writer
// is usable either way.
func OpenSyslog(tag string) (NoticeWriter, error) {
	w, err := DialSyslog(tag)
	if err != nil {
		return &StreamNotice{W: os.Stderr, Tag: tag}, err
	}
	return w, nil
}
