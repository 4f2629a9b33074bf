// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GGEDIT_SYSTEM_FONTS", "false")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), 80, 160, 255})
		}
	}
	p := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return p
}

func TestRenderPNG(t *testing.T) {
	bg := writePNG(t, 200, 100)
	out := filepath.Join(t.TempDir(), "out.png")
	_, err := run(t, "render", "-b", bg, "--width", "400", "--height", "300",
		"--text", "heading=Hello", "--text", "paragraph=World",
		"--filter", "grayscale=100", "-o", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
}

func TestRenderCropToPDF(t *testing.T) {
	bg := writePNG(t, 200, 100)
	out := filepath.Join(t.TempDir(), "square.pdf")
	_, err := run(t, "render", "-b", bg, "--crop", "1:1", "-o", out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderErrors(t *testing.T) {
	bg := writePNG(t, 20, 20)
	out := filepath.Join(t.TempDir(), "x.png")
	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"render", "-o", out}},
		{"bad text", []string{"render", "-b", bg, "--text", "banner=hi", "-o", out}},
		{"bad filter", []string{"render", "-b", bg, "--filter", "vignette=3", "-o", out}},
		{"bad format", []string{"render", "-b", bg, "-o", filepath.Join(t.TempDir(), "x.gif")}},
		{"missing background", []string{"render", "-b", filepath.Join(t.TempDir(), "nope.png"), "-o", out}},
		{"bad aspect", []string{"render", "-b", bg, "--crop", "7:3", "-o", out}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDraftsCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GGEDIT_DRAFTS_URL", "file://"+dir)

	backend, err := kv.NewDir(dir)
	require.NoError(t, err)
	store := draft.NewStore(backend)
	ed := ggedit.New(geom.Sz(800, 600), ggedit.WithDraftStore(store))
	t.Cleanup(func() { ed.Close() })
	require.NoError(t, ed.OpenImage(image.NewRGBA(image.Rect(0, 0, 50, 50))))
	first, err := ed.SaveDraft(context.Background(), "launch banner")
	require.NoError(t, err)
	_, err = ed.SaveDraft(context.Background(), "second")
	require.NoError(t, err)

	out, err := run(t, "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "launch banner")
	assert.Contains(t, out, first.ID)

	_, err = run(t, "drafts", "rename", first.ID, "final banner")
	require.NoError(t, err)
	out, err = run(t, "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "final banner")
	assert.NotContains(t, out, "launch banner")

	rendered := filepath.Join(t.TempDir(), "draft.png")
	_, err = run(t, "render", "--draft", first.ID, "-o", rendered)
	require.NoError(t, err)
	assert.FileExists(t, rendered)

	_, err = run(t, "drafts", "rename", "draft-0", "x")
	assert.ErrorIs(t, err, draft.ErrNotFound)

	ids := make([]string, 0, 2)
	for _, d := range store.List(context.Background()) {
		ids = append(ids, d.ID)
	}
	_, err = run(t, append([]string{"drafts", "delete"}, ids...)...)
	require.NoError(t, err)
	out, err = run(t, "drafts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no drafts")
}

func TestDraftsWithoutStore(t *testing.T) {
	t.Setenv("GGEDIT_DRAFTS_URL", "")
	_, err := run(t, "drafts", "list")
	assert.ErrorIs(t, err, errNoDrafts)
}

func TestFlagOverridesAndVersion(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "version")
	assert.Error(t, err)

	out, err := run(t, "--log-format", "json", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ggedit "), out)
}

func TestOutputFormat(t *testing.T) {
	f, err := outputFormat("a/b/out.JPG", "")
	require.NoError(t, err)
	assert.Equal(t, ggedit.FormatJPEG, f)
	f, err = outputFormat("-", "")
	require.NoError(t, err)
	assert.Equal(t, ggedit.FormatPNG, f)
	f, err = outputFormat("out.png", "pdf")
	require.NoError(t, err)
	assert.Equal(t, ggedit.FormatPDF, f)
}
