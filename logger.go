// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"log/slog"

	"github.com/gogpu/ggedit/internal/logx"
)

// SetLogger configures the logger for ggedit and all its sub-packages.
// By default nothing is logged. Pass nil to restore silence.
//
// Log levels used by ggedit:
//   - [slog.LevelDebug]: no-op commands on unknown ids, stale loads
//   - [slog.LevelInfo]: lifecycle (background loaded, crop committed, draft saved)
//   - [slog.LevelWarn]: degraded paths (font fallback, corrupt drafts, failed loads)
//
// SetLogger is safe for concurrent use. Components created before the call
// keep the logger they captured.
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logx.L()
}
