// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package imageio loads images from the references used by layers and
// backgrounds (data URLs, http(s) URLs, file URLs and plain paths) and
// encodes rasters back into data URLs.
package imageio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

var (
	// ErrUnsupported is returned for references the loader cannot resolve.
	ErrUnsupported = errors.New("imageio: unsupported reference")

	// ErrTooLarge is returned when a source exceeds the loader's size limit.
	ErrTooLarge = errors.New("imageio: source too large")
)

// Loader resolves an image reference to decoded pixels.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (image.Image, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, ref string) (image.Image, error) { return f(ctx, ref) }

// DefaultMaxBytes limits the size of a single source.
const DefaultMaxBytes = 64 << 20

// DefaultLoader handles data:, http:, https:, file: and plain path
// references.
type DefaultLoader struct {
	client   *http.Client
	maxBytes int64
	baseDir  string
}

// Option configures a DefaultLoader.
type Option func(*DefaultLoader)

// WithHTTPClient sets the client used for remote references. Use it to
// inject an authenticated client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *DefaultLoader) { l.client = c }
}

// WithMaxBytes limits how many bytes a single source may have.
func WithMaxBytes(n int64) Option {
	return func(l *DefaultLoader) { l.maxBytes = n }
}

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option {
	return func(l *DefaultLoader) { l.baseDir = dir }
}

// NewLoader returns a loader with the given options.
func NewLoader(opts ...Option) *DefaultLoader {
	l := &DefaultLoader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader.
func (l *DefaultLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	data, mime, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, mime)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", shorten(ref), err)
	}
	return img, nil
}

// Fetch returns the raw bytes behind ref and a MIME hint, which may be
// empty.
func (l *DefaultLoader) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	switch {
	case ref == "":
		return nil, "", fmt.Errorf("%w: empty", ErrUnsupported)
	case strings.HasPrefix(ref, "data:"):
		return DecodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetchHTTP(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return l.readFile(u.Path)
	case strings.Contains(ref, "://"):
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, shorten(ref))
	}
	path := ref
	if l.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	return l.readFile(path)
}

func (l *DefaultLoader) readFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: %w", err)
	}
	defer f.Close()
	data, err := l.readLimited(f)
	if err != nil {
		return nil, "", err
	}
	mime := ""
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		mime = MIMESVG
	}
	return data, mime, nil
}

func (l *DefaultLoader) fetchHTTP(ctx context.Context, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("imageio: fetch %s: status %d", ref, resp.StatusCode)
	}
	data, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return data, strings.TrimSpace(mime), nil
}

func (l *DefaultLoader) readLimited(r io.Reader) ([]byte, error) {
	limit := l.maxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("imageio: read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Decode decodes raster or SVG data. mime is a hint and may be empty.
func Decode(data []byte, mime string) (image.Image, error) {
	if mime == MIMESVG || looksLikeSVG(data) {
		return RasterizeSVG(data, 0)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// DecodeConfig returns the dimensions of raster data without decoding all
// pixels. SVG data is rasterized.
func DecodeConfig(data []byte, mime string) (width, height int, err error) {
	if mime == MIMESVG || looksLikeSVG(data) {
		img, err := RasterizeSVG(data, 0)
		if err != nil {
			return 0, 0, err
		}
		return img.Bounds().Dx(), img.Bounds().Dy(), nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	return cfg.Width, cfg.Height, err
}

func shorten(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
