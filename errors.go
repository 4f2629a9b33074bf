// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import "errors"

var (
	// ErrCropSource is returned by ApplyCrop when the background cannot be
	// reloaded or rasterized. Crop mode stays active.
	ErrCropSource = errors.New("ggedit: crop source unavailable")

	// ErrNoBackground is returned by commands that need a loaded background.
	ErrNoBackground = errors.New("ggedit: no background")

	// ErrFormat is returned for an unknown export format.
	ErrFormat = errors.New("ggedit: unknown export format")

	// ErrInvalidSchedule is returned by Schedule for a time that is not
	// ISO 8601.
	ErrInvalidSchedule = errors.New("ggedit: invalid schedule time")

	// ErrNoDraftStore is returned by draft commands when no store is
	// configured.
	ErrNoDraftStore = errors.New("ggedit: no draft store")

	// ErrNoAI is returned by EditWithAI when no AI editor is configured.
	ErrNoAI = errors.New("ggedit: no AI editor")

	// ErrClosed is returned by commands on a closed editor.
	ErrClosed = errors.New("ggedit: editor closed")
)
