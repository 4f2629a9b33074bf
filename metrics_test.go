// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if err := RegisterMetrics(reg); err != nil {
		t.Errorf("second registration: %v", err)
	}
}

func TestCommandsAreCounted(t *testing.T) {
	ed, _ := openedEditor(t)
	ok := commandsTotal.WithLabelValues("remove", "ok")
	before := testutil.ToFloat64(ok)
	ed.RemoveLayer("missing")
	if got := testutil.ToFloat64(ok); got != before+1 {
		t.Errorf("remove/ok = %v, want %v", got, before+1)
	}

	failed := commandsTotal.WithLabelValues("export", "error")
	before = testutil.ToFloat64(failed)
	_ = ed.ExportRaster(context.Background(), &bytes.Buffer{}, "bmp")
	if got := testutil.ToFloat64(failed); got != before+1 {
		t.Errorf("export/error = %v, want %v", got, before+1)
	}
}
