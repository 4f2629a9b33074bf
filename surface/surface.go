// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/internal/fonts"
	"github.com/gogpu/ggedit/internal/logx"
	"github.com/gogpu/ggedit/layer"
)

// DefaultFontTimeout bounds how long a requested font may take to load
// before the object keeps its fallback face.
const DefaultFontTimeout = 3 * time.Second

// EventKind identifies a surface event.
type EventKind int

const (
	BackgroundLoaded EventKind = iota
	BackgroundFailed
	ObjectModified
	Reordered
	SelectionChanged
	FontUpgraded
	MediaLoaded
	MediaFailed
)

func (k EventKind) String() string {
	switch k {
	case BackgroundLoaded:
		return "background-loaded"
	case BackgroundFailed:
		return "background-failed"
	case ObjectModified:
		return "object-modified"
	case Reordered:
		return "reordered"
	case SelectionChanged:
		return "selection-changed"
	case FontUpgraded:
		return "font-upgraded"
	case MediaLoaded:
		return "media-loaded"
	case MediaFailed:
		return "media-failed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to subscribers. ID is empty for background events and
// for a cleared selection. Geometry is set for ObjectModified.
type Event struct {
	Kind     EventKind
	ID       string
	Geometry layer.Geometry
	Err      error
}

// CornerStyle is the shape of the selection handles.
type CornerStyle int

const (
	CornerSquare CornerStyle = iota
	CornerCircle
)

// HandleStyle decorates the selected object.
type HandleStyle struct {
	Color  gg.RGBA
	Border gg.RGBA
	Size   float64
	Corner CornerStyle
	// RotateOffset is the distance of the rotate handle above the top edge.
	RotateOffset float64
}

// DefaultHandleStyle is used unless WithHandleStyle overrides it.
var DefaultHandleStyle = HandleStyle{
	Color:        gg.Hex("#3b82f6"),
	Border:       gg.Hex("#1d4ed8"),
	Size:         10,
	Corner:       CornerCircle,
	RotateOffset: 30,
}

// Option configures a Surface.
type Option func(*Surface)

// WithLoader sets the image loader for the background and media objects.
func WithLoader(l imageio.Loader) Option {
	return func(s *Surface) { s.loader = l }
}

// WithFonts sets the registry used to resolve font families.
func WithFonts(r *fonts.Registry) Option {
	return func(s *Surface) { s.fonts = r }
}

// WithFontTimeout overrides DefaultFontTimeout.
func WithFontTimeout(d time.Duration) Option {
	return func(s *Surface) { s.fontTimeout = d }
}

// WithHandleStyle overrides DefaultHandleStyle.
func WithHandleStyle(st HandleStyle) Option {
	return func(s *Surface) { s.style = st }
}

// Surface is the editable scene. Create it with New.
type Surface struct {
	size        geom.Size
	loader      imageio.Loader
	fonts       *fonts.Registry
	fontTimeout time.Duration
	style       HandleStyle
	log         *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	bg      background
	objects map[string]*object
	order   []string // bottom to top, background excluded

	selected string
	gesture  *gesture
	focused  bool
	overlay  Overlay

	subs     map[int]func(Event)
	nextSub  int
	queue    []Event
	flushing bool
}

// New returns an empty surface of the given canvas size.
func New(size geom.Size, opts ...Option) *Surface {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Surface{
		size:        size,
		loader:      imageio.NewLoader(),
		fontTimeout: DefaultFontTimeout,
		style:       DefaultHandleStyle,
		log:         logx.With("surface"),
		ctx:         ctx,
		cancel:      cancel,
		objects:     make(map[string]*object),
		subs:        make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Size returns the canvas size.
func (s *Surface) Size() geom.Size { return s.size }

// Subscribe registers fn for events and returns a function that removes it.
func (s *Surface) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// emitLocked queues e for delivery by the next unlock.
func (s *Surface) emitLocked(e Event) {
	s.queue = append(s.queue, e)
}

// unlock releases s.mu and delivers queued events in order. Only one
// goroutine delivers at a time; events queued meanwhile, including from
// handlers, are picked up by the loop that is already running.
func (s *Surface) unlock() {
	if s.flushing || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	for len(s.queue) > 0 {
		batch := s.queue
		s.queue = nil
		subs := make([]func(Event), 0, len(s.subs))
		for _, k := range slices.Sorted(maps.Keys(s.subs)) {
			subs = append(subs, s.subs[k])
		}
		s.mu.Unlock()
		for _, e := range batch {
			for _, fn := range subs {
				fn(e)
			}
		}
		s.mu.Lock()
	}
	s.flushing = false
	s.mu.Unlock()
}

// spawn runs fn as tracked background work.
func (s *Surface) spawn(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// Wait blocks until every pending background, font and media load has
// been applied or discarded.
func (s *Surface) Wait() { s.wg.Wait() }

// Close cancels pending loads and waits for them.
func (s *Surface) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Clear removes every object. The background stays.
func (s *Surface) Clear() {
	s.mu.Lock()
	clear(s.objects)
	s.order = s.order[:0]
	if s.selected != "" {
		s.selected = ""
		s.emitLocked(Event{Kind: SelectionChanged})
	}
	s.gesture = nil
	s.unlock()
}

// Has reports whether an object with id exists.
func (s *Surface) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[id]
	return ok
}

// Len returns the number of objects, background excluded.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Order returns object ids from bottom to top, background excluded.
func (s *Surface) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// BackgroundImage returns the decoded background, or nil.
func (s *Surface) BackgroundImage() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bg.img
}
