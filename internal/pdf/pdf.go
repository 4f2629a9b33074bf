// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pdf wraps a raster into a single-page PDF document.
package pdf

import (
	"errors"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ErrEmpty is returned for an empty raster.
var ErrEmpty = errors.New("pdf: empty raster")

// Margin is the page margin on every side, in millimeters.
const Margin = 10.0

// slack keeps the image row strictly below the usable height; maroto
// breaks the page when a row reaches it exactly.
const slack = 0.01

// FromJPEG returns a PDF with one landscape A4 page holding the JPEG
// image, centered and scaled to fit inside the margins.
func FromJPEG(jpeg []byte) ([]byte, error) {
	if len(jpeg) == 0 {
		return nil, ErrEmpty
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(Margin).
		WithRightMargin(Margin).
		WithTopMargin(Margin).
		WithBottomMargin(Margin).
		Build()

	m := maroto.New(cfg)
	img := image.NewFromBytes(jpeg, extension.Jpg, props.Rect{Center: true, Percent: 100})
	m.AddRow(usableHeight(cfg)-slack, col.New(12).Add(img))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

// usableHeight is the page height inside the top and bottom margins.
func usableHeight(cfg *entity.Config) float64 {
	return cfg.Dimensions.Height - cfg.Margins.Top - cfg.Margins.Bottom
}
