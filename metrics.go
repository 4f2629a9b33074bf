// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggedit

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ggedit",
			Name:      "commands_total",
			Help:      "Editor commands by name and result.",
		},
		[]string{"command", "result"},
	)
	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ggedit",
			Name:      "export_duration_seconds",
			Help:      "Time to rasterize and encode an export.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"format"},
	)
)

// RegisterMetrics registers the editor metrics with reg. Registering twice
// with the same registry is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{commandsTotal, exportDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// observe counts one command. It returns err unchanged.
func observe(command string, err error) error {
	result := "ok"
	if err != nil {
		result = "error"
	}
	commandsTotal.WithLabelValues(command, result).Inc()
	return err
}

func observeExport(format Format, start time.Time) {
	exportDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
}
