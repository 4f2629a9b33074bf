// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command ggedit serves editor sessions over HTTP, renders compositions
// from the command line and manages stored drafts.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"runtime"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/aiedit"
	"github.com/gogpu/ggedit/config"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/kv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs after flag parsing.
type app struct {
	configFile string
	logLevel   string
	logFormat  string
	stderr     io.Writer

	cfg config.Config
	log *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{stderr: os.Stderr}
	root := &cobra.Command{
		Use:           "ggedit",
		Short:         "Layered image editor",
		Long:          "ggedit composes text and media layers over a background image, crops,\nexports PNG, JPEG or PDF and keeps drafts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Flags())
		},
	}
	a.bindFlags(root.PersistentFlags())

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newRenderCommand(a))
	root.AddCommand(newDraftsCommand(a))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ggedit %s (commit: %s, go: %s)\n", version, commit, runtime.Version())
		},
	})
	return root
}

func (a *app) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file")
	fs.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")
}

// setup loads the configuration, applies flag overrides and installs the
// process logger.
func (a *app) setup(fs *pflag.FlagSet) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Log.NewLogger(a.stderr)
	ggedit.SetLogger(a.log)
	gg.SetLogger(a.log.With("component", "gg"))
	return nil
}

// openDrafts opens the configured draft store. The returned close
// function is never nil.
func (a *app) openDrafts(ctx context.Context) (*draft.Store, func(), error) {
	if a.cfg.Drafts.URL == "" {
		return nil, func() {}, nil
	}
	backend, err := kv.Open(ctx, a.cfg.Drafts.URL)
	if err != nil {
		return nil, func() {}, err
	}
	var opts []draft.Option
	if a.cfg.Drafts.Key != "" {
		opts = append(opts, draft.WithKey(a.cfg.Drafts.Key))
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			a.log.Warn("closing draft store", "err", err)
		}
	}
	return draft.NewStore(backend, opts...), closeFn, nil
}

// editorOptions translates the configuration into editor options. Drafts
// are wired separately because the server shares one store.
func (a *app) editorOptions() []ggedit.Option {
	c := a.cfg
	opts := []ggedit.Option{
		ggedit.WithLoader(imageio.NewLoader(
			imageio.WithBaseDir(c.Images.BaseDir),
			imageio.WithMaxBytes(c.Images.MaxBytes),
		)),
		ggedit.WithExportMultiplier(c.Export.Multiplier),
		ggedit.WithFontTimeout(c.Fonts.Timeout),
	}
	if c.Fonts.System {
		opts = append(opts, ggedit.WithSystemFonts(c.Fonts.CacheDir))
	}
	if c.AI.Endpoint != "" {
		ai := aiedit.New(c.AI.Endpoint,
			aiedit.WithToken(c.AI.Token),
			aiedit.WithRateLimit(c.AI.Rate, c.AI.Burst),
			aiedit.WithHTTPClient(&http.Client{Timeout: c.AI.Timeout}),
		)
		opts = append(opts, ggedit.WithAI(ai))
	}
	return opts
}
