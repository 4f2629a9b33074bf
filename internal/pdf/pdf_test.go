// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFromJPEG(t *testing.T) {
	for _, size := range []image.Point{{160, 90}, {90, 160}, {64, 64}} {
		doc, err := FromJPEG(jpegBytes(t, size.X, size.Y))
		if err != nil {
			t.Fatalf("%v: %v", size, err)
		}
		if !bytes.HasPrefix(doc, []byte("%PDF")) {
			t.Fatalf("%v: missing %%PDF header", size)
		}
		n, err := api.PageCount(bytes.NewReader(doc), model.NewDefaultConfiguration())
		if err != nil {
			t.Fatalf("%v: pdfcpu cannot read the document: %v", size, err)
		}
		if n != 1 {
			t.Errorf("%v: PageCount = %d, want 1", size, n)
		}
		if imgs := bytes.Count(doc, []byte("/Subtype /Image")); imgs != 1 {
			t.Errorf("%v: %d embedded images, want 1", size, imgs)
		}
	}
}

func TestFromJPEGEmpty(t *testing.T) {
	if _, err := FromJPEG(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}
