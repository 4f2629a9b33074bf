// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package logx holds the process-wide logger shared by every ggedit package.
//
// The root package re-exports SetLogger and Logger; sub-packages import logx
// directly so that they never depend on the root package.
package logx

import (
	"context"
	"log"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all records. Enabled reports false so callers skip
// attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(nopHandler{}))
}

// Set installs l as the shared logger. A nil logger restores silence.
func Set(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	current.Store(l)
}

// L returns the shared logger.
func L() *slog.Logger {
	return current.Load()
}

// With returns the shared logger tagged with a component attribute.
func With(component string) *slog.Logger {
	return current.Load().With("component", component)
}

// Std adapts the shared logger to the Printf-style *log.Logger that some
// third-party packages expect. Records are emitted at warn level.
func Std(component string) *log.Logger {
	return slog.NewLogLogger(With(component).Handler(), slog.LevelWarn)
}
