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
	"context"
	"log/slog"
	"sync/atomic"
)

// SwapHandler forwards records to a backend that can be replaced at any time.
//
// Loggers derived with With or WithGroup share the same backend slot, so a
// logger handed out before a Swap keeps working and writes to the new
// backend afterwards.
type SwapHandler struct {
	slot *atomic.Pointer[slog.Handler]
	ops  []func(slog.Handler) slog.Handler
}

// NewSwapHandler creates a SwapHandler with an initial backend.
func NewSwapHandler(initial slog.Handler) *SwapHandler {
	h := &SwapHandler{slot: new(atomic.Pointer[slog.Handler])}
	h.Swap(initial)
	return h
}

// Swap installs a new backend and returns the previous one.
func (h *SwapHandler) Swap(next slog.Handler) slog.Handler {
	if next == nil {
		next = Discard
	}
	prev := h.slot.Swap(&next)
	if prev == nil {
		return nil
	}
	return *prev
}

// Backend returns the currently installed backend.
func (h *SwapHandler) Backend() slog.Handler {
	return *h.slot.Load()
}

func (h *SwapHandler) current() slog.Handler {
	backend := h.Backend()
	for _, op := range h.ops {
		backend = op(backend)
	}
	return backend
}

// Enabled implements slog.Handler.
func (h *SwapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Backend().Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SwapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *SwapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(b slog.Handler) slog.Handler { return b.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (h *SwapHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(b slog.Handler) slog.Handler { return b.WithGroup(name) })
}

func (h *SwapHandler) derive(op func(slog.Handler) slog.Handler) *SwapHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &SwapHandler{slot: h.slot, ops: append(ops, op)}
}

// Discard is a handler that drops every record.
var Discard slog.Handler = discardHandler{}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
