// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	background string
	draftID    string
	width      float64
	height     float64
	texts      []string
	media      []string
	filters    map[string]string
	cropAspect string
	output     string
	format     string
}

func newRenderCommand(a *app) *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compose layers over a background and export the result",
		Example: `  ggedit render -b photo.jpg --text heading="Summer sale" --text paragraph="Today only" -o out.png
  ggedit render -b photo.jpg --crop 1:1 --filter grayscale=100 -o square.pdf
  ggedit render --draft draft-1760000000000 -o draft.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.background == "" && o.draftID == "" {
				return errors.New("one of --background or --draft is required")
			}
			return a.render(cmd.Context(), o, cmd.OutOrStdout())
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.background, "background", "b", "", "background image: file, URL or data URL")
	fs.StringVar(&o.draftID, "draft", "", "render a stored draft instead of a background")
	fs.Float64Var(&o.width, "width", 0, "canvas width (default from config)")
	fs.Float64Var(&o.height, "height", 0, "canvas height (default from config)")
	fs.StringArrayVar(&o.texts, "text", nil, "text layer as kind=content; kinds: heading, paragraph, emoji, custom")
	fs.StringArrayVar(&o.media, "media", nil, "media layer source; repeatable")
	fs.StringToStringVar(&o.filters, "filter", nil, "background filters, e.g. brightness=20,sepia=40")
	fs.StringVar(&o.cropAspect, "crop", "", "crop to the centered box of this aspect before adding layers")
	fs.StringVarP(&o.output, "output", "o", "", "output file; - writes to stdout")
	fs.StringVar(&o.format, "format", "", "png, jpeg or pdf (default from the output extension)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) render(ctx context.Context, o renderOptions, stdout io.Writer) error {
	format, err := outputFormat(o.output, o.format)
	if err != nil {
		return err
	}
	patch, err := filtersPatch(o.filters)
	if err != nil {
		return err
	}
	size := geom.Sz(a.cfg.Canvas.Width, a.cfg.Canvas.Height)
	if o.width > 0 && o.height > 0 {
		size = geom.Sz(o.width, o.height)
	}

	opts := a.editorOptions()
	if o.draftID != "" {
		drafts, closeDrafts, err := a.openDrafts(ctx)
		if err != nil {
			return err
		}
		defer closeDrafts()
		opts = append(opts, ggedit.WithDraftStore(drafts))
	}
	ed := ggedit.New(size, opts...)
	defer ed.Close()

	if o.draftID != "" {
		if err := ed.LoadDraft(ctx, o.draftID); err != nil {
			return err
		}
	} else if err := ed.Open(ctx, o.background); err != nil {
		return err
	}

	if o.cropAspect != "" {
		if err := ed.SetCropAspect(crop.Aspect(o.cropAspect)); err != nil {
			return err
		}
		if err := ed.ToggleCrop(); err != nil {
			return err
		}
		if _, err := ed.ApplyCrop(ctx); err != nil {
			return err
		}
	}
	ed.UpdateFilters(patch)

	for _, t := range o.texts {
		kind, content, ok := strings.Cut(t, "=")
		if !ok || !layer.TextKind(kind).Valid() {
			return fmt.Errorf("--text %q: want kind=content with a known kind", t)
		}
		if _, err := ed.AddTextLayer(layer.TextKind(kind), content); err != nil {
			return err
		}
	}
	for _, src := range o.media {
		if _, err := ed.AddMediaLayer(ctx, ggedit.MediaDescriptor{Kind: layer.Image, SourceURL: src}); err != nil {
			return err
		}
	}
	ed.Surface().ClearSelection()
	// Fonts and media load in the background.
	ed.Wait()

	if o.output == "-" {
		w := bufio.NewWriter(stdout)
		if err := ed.ExportRaster(ctx, w, format); err != nil {
			return err
		}
		return w.Flush()
	}
	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	if err := ed.ExportRaster(ctx, f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("rendered", "output", o.output, "format", format, "layers", len(ed.Layers()))
	return nil
}

func outputFormat(output, format string) (ggedit.Format, error) {
	if format != "" {
		return ggedit.ParseFormat(format)
	}
	if ext := filepath.Ext(output); ext != "" && output != "-" {
		return ggedit.ParseFormat(ext)
	}
	return ggedit.FormatPNG, nil
}

func filtersPatch(m map[string]string) (layer.FiltersPatch, error) {
	var p layer.FiltersPatch
	fields := map[string]**float64{
		"brightness": &p.Brightness,
		"contrast":   &p.Contrast,
		"sepia":      &p.Sepia,
		"blur":       &p.Blur,
		"grayscale":  &p.Grayscale,
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		dst, ok := fields[strings.ToLower(k)]
		if !ok {
			return p, fmt.Errorf("--filter: unknown filter %q", k)
		}
		v, err := strconv.ParseFloat(m[k], 64)
		if err != nil {
			return p, fmt.Errorf("--filter %s: %w", k, err)
		}
		*dst = &v
	}
	return p, nil
}
