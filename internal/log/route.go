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
	"errors"
	"log/slog"
)

// LevelRouter sends each record to the handler registered for its exact
// level, or to the fallback handler when none is registered.
//
// A daemon uses it to keep Info records on the system log, where operators
// watch status lines, while everything else goes to the error log file.
type LevelRouter struct {
	fallback slog.Handler
	routes   map[slog.Level]slog.Handler
}

// NewLevelRouter creates a router. routes may be nil.
func NewLevelRouter(fallback slog.Handler, routes map[slog.Level]slog.Handler) *LevelRouter {
	r := &LevelRouter{
		fallback: fallback,
		routes:   make(map[slog.Level]slog.Handler, len(routes)),
	}
	for level, h := range routes {
		r.routes[level] = h
	}
	return r
}

func (r *LevelRouter) pick(level slog.Level) slog.Handler {
	if h, ok := r.routes[level]; ok {
		return h
	}
	return r.fallback
}

// Enabled implements slog.Handler.
func (r *LevelRouter) Enabled(ctx context.Context, level slog.Level) bool {
	return r.pick(level).Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (r *LevelRouter) Handle(ctx context.Context, rec slog.Record) error {
	return r.pick(rec.Level).Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (r *LevelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (r *LevelRouter) WithGroup(name string) slog.Handler {
	return r.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (r *LevelRouter) derive(op func(slog.Handler) slog.Handler) *LevelRouter {
	next := &LevelRouter{
		fallback: op(r.fallback),
		routes:   make(map[slog.Level]slog.Handler, len(r.routes)),
	}
	for level, h := range r.routes {
		next.routes[level] = op(h)
	}
	return next
}

// FanoutHandler writes every record to all of its handlers. It is used for
// messages that must reach whichever tier is still working.
type FanoutHandler []slog.Handler

// Enabled implements slog.Handler.
func (f FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler. Every enabled handler sees the record even
// if an earlier one fails.
func (f FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (f FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(FanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

// WithGroup implements slog.Handler.
func (f FanoutHandler) WithGroup(name string) slog.Handler {
	next := make(FanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
