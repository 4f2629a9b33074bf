// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package crop implements the interactive crop overlay bound to the
// background image and the pixel crop it commits.
//
// A Controller moves through Inactive -> Active -> Inactive. While Active it
// owns an overlay rectangle in canvas space that never leaves the
// background's on-screen bounds. The image-space region is derived from the
// overlay and the bounds on every call.
package crop

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/internal/logx"
)

var (
	// ErrInactive is returned by operations that need an active overlay.
	ErrInactive = errors.New("crop: not active")

	// ErrNoBackground is returned by Begin when there is nothing to crop.
	ErrNoBackground = errors.New("crop: no background image")

	// ErrStale is returned by Complete when the ticket was invalidated by
	// Cancel or a new Begin.
	ErrStale = errors.New("crop: stale commit")

	// ErrEmptyRegion is returned when the region has no pixels.
	ErrEmptyRegion = errors.New("crop: empty region")

	// ErrAspect is returned for unknown aspect names.
	ErrAspect = errors.New("crop: unknown aspect ratio")
)

// State is the controller's mode.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Handle identifies the part of the overlay a gesture grabbed.
type Handle int

const (
	HandleNone Handle = iota
	HandleBody
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

// Region is the derived crop data.
type Region struct {
	// Image is the crop in native pixels of the background.
	Image geom.Rect `json:"imageSpaceRect"`
	// Canvas is the overlay in canvas space.
	Canvas geom.Rect `json:"canvasSpaceRect"`
	Aspect Aspect    `json:"aspectRatio"`
}

// PixelSize returns the integer size Rasterize produces for r.
func (r Region) PixelSize() (w, h int) {
	return int(math.Round(r.Image.Width)), int(math.Round(r.Image.Height))
}

// Ticket is a pending commit. It is valid until the next Cancel or Begin.
type Ticket struct {
	Region Region
	gen    uint64
}

// Controller is the crop state machine. It is safe for concurrent use.
type Controller struct {
	// InitialFraction sizes the first overlay relative to the image box.
	InitialFraction float64
	// FitFraction and FitMargin bound the overlay placed by SetAspect.
	FitFraction float64
	FitMargin   float64
	// ClampMargin keeps the overlay this far inside the image bounds.
	ClampMargin float64
	// MinSize is the smallest overlay side in canvas units.
	MinSize float64
	// HandleSize is the side of the square corner handles.
	HandleSize float64

	mu     sync.Mutex
	state  State
	bounds geom.Rect
	native geom.Size
	aspect Aspect
	rect   geom.Rect
	gen    uint64

	drag     Handle
	dragFrom geom.Point

	log *slog.Logger
}

// New returns an inactive controller with the default tuning.
func New() *Controller {
	return &Controller{
		InitialFraction: 0.7,
		FitFraction:     0.8,
		FitMargin:       10,
		ClampMargin:     2,
		MinSize:         20,
		HandleSize:      10,
		aspect:          Freeform,
		log:             logx.With("crop"),
	}
}

// Begin enters Active for a background displayed at bounds with the given
// native pixel size.
func (c *Controller) Begin(bounds geom.Rect, native geom.Size, aspect Aspect) error {
	if bounds.Empty() || native.Empty() {
		return ErrNoBackground
	}
	if _, err := ParseAspect(string(aspect)); err != nil {
		return err
	}
	if aspect == "" {
		aspect = Freeform
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Active
	c.bounds = bounds
	c.native = native
	c.aspect = aspect
	c.drag = HandleNone

	r := geom.CenterIn(bounds.Size().Scale(c.InitialFraction), bounds)
	if ratio, ok := c.ratioLocked(); ok {
		r = geom.FitAspect(ratio, r)
	}
	c.rect = c.clampLocked(r)
	c.log.Debug("crop begin", "bounds", bounds, "native", native, "aspect", aspect)
	return nil
}

// State returns the current mode.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active reports whether the overlay is shown.
func (c *Controller) Active() bool { return c.State() == Active }

// Aspect returns the current constraint.
func (c *Controller) Aspect() Aspect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

// Rect returns the overlay in canvas space.
func (c *Controller) Rect() geom.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rect
}

// SetAspect changes the constraint. The overlay becomes the largest
// rectangle of the new ratio inside FitFraction of the image bounds, less
// FitMargin, centered on the image. Freeform keeps the current overlay.
func (c *Controller) SetAspect(a Aspect) error {
	a, err := ParseAspect(string(a))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return ErrInactive
	}
	c.aspect = a
	if ratio, ok := c.ratioLocked(); ok {
		area := geom.CenterIn(c.bounds.Size().Scale(c.FitFraction), c.bounds).Inset(c.FitMargin)
		if area.Empty() {
			area = c.bounds
		}
		c.rect = c.clampLocked(geom.FitAspect(ratio, area))
	}
	return nil
}

// SetBounds tells the controller the background moved or was rescaled.
func (c *Controller) SetBounds(bounds geom.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active || bounds.Empty() {
		return
	}
	c.bounds = bounds
	c.rect = c.clampLocked(c.rect)
}

// Move translates the overlay, keeping it inside the image.
func (c *Controller) Move(dx, dy float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return ErrInactive
	}
	c.rect = c.clampLocked(c.rect.Translate(dx, dy))
	return nil
}

// Resize drags corner h to p. The opposite corner stays fixed; fixed
// ratios are preserved.
func (c *Controller) Resize(h Handle, p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return ErrInactive
	}
	c.rect = c.resizeLocked(h, p)
	return nil
}

// Region maps the overlay into native pixels. It is computed from the
// current overlay and bounds on every call.
func (c *Controller) Region() (Region, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return Region{}, ErrInactive
	}
	return c.regionLocked(), nil
}

// Prepare starts a commit. The caller rasterizes Ticket.Region and then
// calls Complete.
func (c *Controller) Prepare() (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		return Ticket{}, ErrInactive
	}
	r := c.regionLocked()
	if w, h := r.PixelSize(); w <= 0 || h <= 0 {
		return Ticket{}, ErrEmptyRegion
	}
	return Ticket{Region: r, gen: c.gen}, nil
}

// Complete finishes the commit started by Prepare and returns to Inactive.
func (c *Controller) Complete(t Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active || t.gen != c.gen {
		return ErrStale
	}
	c.resetLocked()
	c.log.Info("crop committed", "region", t.Region.Image)
	return nil
}

// Cancel discards the overlay and invalidates pending tickets.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Active {
		c.log.Debug("crop cancelled")
	}
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.gen++
	c.state = Inactive
	c.rect = geom.Rect{}
	c.drag = HandleNone
}

func (c *Controller) ratioLocked() (float64, bool) {
	return c.aspect.Ratio(c.bounds.Size())
}

func (c *Controller) regionLocked() Region {
	m := geom.Mapping{Bounds: c.bounds, Native: c.native}
	return Region{Image: m.ToImage(c.rect), Canvas: c.rect, Aspect: c.aspect}
}

func (c *Controller) limitLocked() geom.Rect {
	l := c.bounds.Inset(c.ClampMargin)
	if l.Empty() {
		return c.bounds
	}
	return l
}

// clampLocked shrinks r uniformly until it fits the limit and then slides
// it inside.
func (c *Controller) clampLocked(r geom.Rect) geom.Rect {
	l := c.limitLocked()
	if r.Width > l.Width || r.Height > l.Height {
		k := math.Min(l.Width/r.Width, l.Height/r.Height)
		r = geom.CenterIn(r.Size().Scale(k), r)
	}
	r.X = geom.Clamp(r.X, l.X, l.Right()-r.Width)
	r.Y = geom.Clamp(r.Y, l.Y, l.Bottom()-r.Height)
	return r
}

func (c *Controller) resizeLocked(h Handle, p geom.Point) geom.Rect {
	r := c.rect
	var anchor geom.Point
	var sx, sy float64 // direction from anchor to the dragged corner
	switch h {
	case HandleTopLeft:
		anchor, sx, sy = r.Max(), -1, -1
	case HandleTopRight:
		anchor, sx, sy = geom.Pt(r.X, r.Bottom()), 1, -1
	case HandleBottomLeft:
		anchor, sx, sy = geom.Pt(r.Right(), r.Y), -1, 1
	case HandleBottomRight:
		anchor, sx, sy = r.Min(), 1, 1
	default:
		return r
	}

	l := c.limitLocked()
	maxW := l.Right() - anchor.X
	if sx < 0 {
		maxW = anchor.X - l.X
	}
	maxH := l.Bottom() - anchor.Y
	if sy < 0 {
		maxH = anchor.Y - l.Y
	}

	w := math.Max((p.X-anchor.X)*sx, 0)
	ht := math.Max((p.Y-anchor.Y)*sy, 0)

	if ratio, ok := c.ratioLocked(); ok {
		// Follow whichever axis the pointer moved further along.
		if ht == 0 || w/ht > ratio {
			ht = w / ratio
		} else {
			w = ht * ratio
		}
		if w < c.MinSize {
			w, ht = c.MinSize, c.MinSize/ratio
		}
		if ht < c.MinSize {
			w, ht = c.MinSize*ratio, c.MinSize
		}
		if w > maxW {
			w, ht = maxW, maxW/ratio
		}
		if ht > maxH {
			w, ht = maxH*ratio, maxH
		}
	} else {
		w = geom.Clamp(w, math.Min(c.MinSize, maxW), maxW)
		ht = geom.Clamp(ht, math.Min(c.MinSize, maxH), maxH)
	}

	x := anchor.X
	if sx < 0 {
		x -= w
	}
	y := anchor.Y
	if sy < 0 {
		y -= ht
	}
	return geom.R(x, y, w, ht)
}

func (c *Controller) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("crop(%s %s %v)", c.state, c.aspect, c.rect)
}
