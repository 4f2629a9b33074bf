// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor HTTP API",
		Example: `  ggedit serve --addr :8080
  GGEDIT_DRAFTS_URL=sqlite:///var/lib/ggedit/drafts.db ggedit serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	c := a.cfg
	drafts, closeDrafts, err := a.openDrafts(ctx)
	if err != nil {
		return err
	}
	defer closeDrafts()

	srv := server.New(
		server.WithCanvas(geom.Sz(c.Canvas.Width, c.Canvas.Height)),
		server.WithEditorOptions(a.editorOptions()...),
		server.WithDrafts(drafts),
		server.WithMaxSessions(c.Server.MaxSessions),
		server.WithCORSOrigins(c.Server.CORSOrigins...),
		server.WithRateLimit(c.Server.RateLimit, c.Server.RateBurst),
		server.WithLogger(a.log.With("component", "server")),
	)
	return srv.Run(ctx, &http.Server{
		Addr:         c.Server.Addr,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		IdleTimeout:  c.Server.IdleTimeout,
	})
}
