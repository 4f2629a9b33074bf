// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imageio

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	data, err := Encode(img, MIMEPNG)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20" width="40" height="20">
<rect x="0" y="0" width="40" height="20" fill="#ff0000"/></svg>`

func TestDataURLRoundTrip(t *testing.T) {
	img := testImage(7, 5)
	ref, err := EncodeDataURL(img, MIMEPNG)
	if err != nil {
		t.Fatalf("EncodeDataURL: %v", err)
	}
	if !strings.HasPrefix(ref, "data:image/png;base64,") {
		t.Errorf("prefix = %q", ref[:30])
	}
	got, err := NewLoader().Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
	r, g, b, a := got.At(3, 2).RGBA()
	if r>>8 != 30 || g>>8 != 20 || b>>8 != 100 || a>>8 != 255 {
		t.Errorf("pixel = %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestDecodeDataURLPercent(t *testing.T) {
	data, mime, err := DecodeDataURL("data:image/svg+xml," + strings.ReplaceAll(squareSVG, " ", "%20"))
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if mime != MIMESVG || !strings.Contains(string(data), "<rect") {
		t.Errorf("mime=%q data=%q", mime, data)
	}
	if _, _, err := DecodeDataURL("data:image/png;base64"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("malformed err = %v", err)
	}
}

func TestLoadFileAndPath(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "bg.png", testImage(12, 8))

	l := NewLoader(WithBaseDir(dir))
	for _, ref := range []string{path, "file://" + path, "bg.png"} {
		img, err := l.Load(context.Background(), ref)
		if err != nil {
			t.Errorf("Load(%q): %v", ref, err)
			continue
		}
		if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 8 {
			t.Errorf("Load(%q) bounds = %v", ref, img.Bounds())
		}
	}

	if _, err := l.Load(context.Background(), "missing.png"); err == nil {
		t.Error("Load of missing file should fail")
	}
	if _, err := l.Load(context.Background(), "ftp://x/y.png"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ftp err = %v, want ErrUnsupported", err)
	}
	if _, err := l.Load(context.Background(), ""); !errors.Is(err, ErrUnsupported) {
		t.Errorf("empty ref err = %v, want ErrUnsupported", err)
	}
}

func TestLoadHTTP(t *testing.T) {
	png, _ := Encode(testImage(4, 4), MIMEPNG)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		case "/logo":
			w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
			w.Write([]byte(squareSVG))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(WithHTTPClient(srv.Client()))
	img, err := l.Load(context.Background(), srv.URL+"/a.png")
	if err != nil || img.Bounds().Dx() != 4 {
		t.Fatalf("Load png: %v %v", img, err)
	}
	svg, err := l.Load(context.Background(), srv.URL+"/logo")
	if err != nil {
		t.Fatalf("Load svg: %v", err)
	}
	if svg.Bounds().Dx() != 40 || svg.Bounds().Dy() != 20 {
		t.Errorf("svg bounds = %v, want 40x20", svg.Bounds())
	}
	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("404 should fail")
	}
}

func TestLoadTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "big.png", testImage(20, 20))
	_, err := NewLoader(WithMaxBytes(10)).Load(context.Background(), path)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader().Load(ctx, "whatever.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRasterizeSVG(t *testing.T) {
	img, err := RasterizeSVG([]byte(squareSVG), 80)
	if err != nil {
		t.Fatalf("RasterizeSVG: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 40 {
		t.Errorf("bounds = %v, want 80x40", img.Bounds())
	}
	if c := img.RGBAAt(40, 20); c.R < 200 || c.A < 200 {
		t.Errorf("center pixel = %v, want red", c)
	}
	w, h, err := DecodeConfig([]byte(squareSVG), "")
	if err != nil || w != 40 || h != 20 {
		t.Errorf("DecodeConfig = %d x %d, %v", w, h, err)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	if _, err := Encode(testImage(1, 1), "image/gif"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}
