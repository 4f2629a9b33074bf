// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package logx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDefaultSilent(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if L().Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSetAndRestore(t *testing.T) {
	orig := L()
	t.Cleanup(func() { Set(orig) })

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	With("surface").Info("background loaded", "ref", "a.png")

	out := buf.String()
	if !strings.Contains(out, "component=surface") {
		t.Errorf("output %q missing component attribute", out)
	}
	if !strings.Contains(out, "ref=a.png") {
		t.Errorf("output %q missing ref attribute", out)
	}

	Set(nil)
	if L().Enabled(context.Background(), slog.LevelError) {
		t.Error("Set(nil) should restore the silent logger")
	}
}

func TestStd(t *testing.T) {
	orig := L()
	t.Cleanup(func() { Set(orig) })

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	Std("fonts").Printf("scan failed: %s", "boom")
	if !strings.Contains(buf.String(), "scan failed: boom") {
		t.Errorf("Std output = %q", buf.String())
	}
}

func TestConcurrentSet(t *testing.T) {
	orig := L()
	t.Cleanup(func() { Set(orig) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Set(slog.Default())
		}()
		go func() {
			defer wg.Done()
			L().Debug("noop")
		}()
	}
	wg.Wait()
}
