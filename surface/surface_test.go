// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/imageio"
	"github.com/gogpu/ggedit/internal/fonts"
	"github.com/gogpu/ggedit/layer"
	"golang.org/x/image/font/gofont/gobold"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func record(s *Surface) *recorder {
	r := &recorder{}
	s.Subscribe(func(e Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})
	return r
}

func (r *recorder) of(k EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func mapLoader(imgs map[string]image.Image) imageio.Loader {
	return imageio.LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		if img, ok := imgs[ref]; ok {
			return img, nil
		}
		return nil, fmt.Errorf("no image %q", ref)
	})
}

func media(id string, x, y, w, h float64) layer.MediaLayer {
	m := layer.DefaultMedia(layer.Image, "mem://"+id, w, h)
	m.ID = id
	m.Position = geom.Pt(x, y)
	return m
}

func TestBackgroundFit(t *testing.T) {
	s := New(geom.Sz(800, 600), WithLoader(mapLoader(map[string]image.Image{
		"bg": solid(1000, 500, color.White),
	})))
	defer s.Close()
	rec := record(s)

	if err := s.BackgroundErr(); !errors.Is(err, ErrNoBackground) {
		t.Errorf("BackgroundErr before load = %v", err)
	}
	if err := s.LoadBackground(context.Background(), "bg"); err != nil {
		t.Fatal(err)
	}
	bg, ok := s.Background()
	if !ok {
		t.Fatal("no background")
	}
	if want := geom.R(0, 100, 800, 400); bg.Bounds != want {
		t.Errorf("Bounds = %v, want %v", bg.Bounds, want)
	}
	if bg.Native != geom.Sz(1000, 500) {
		t.Errorf("Native = %v", bg.Native)
	}
	if n := len(rec.of(BackgroundLoaded)); n != 1 {
		t.Errorf("BackgroundLoaded events = %d", n)
	}
	if s.BackgroundErr() != nil {
		t.Errorf("BackgroundErr = %v", s.BackgroundErr())
	}
}

func TestBackgroundFailureKeepsSurfaceUsable(t *testing.T) {
	s := New(geom.Sz(100, 100), WithLoader(mapLoader(nil)))
	defer s.Close()
	rec := record(s)

	s.SetBackground(context.Background(), "missing")
	s.Wait()
	if s.BackgroundErr() == nil {
		t.Fatal("BackgroundErr = nil")
	}
	if n := len(rec.of(BackgroundFailed)); n != 1 {
		t.Errorf("BackgroundFailed events = %d", n)
	}
	if _, ok := s.Background(); ok {
		t.Error("failed load installed a background")
	}
	s.AddMediaImage(media("m", 10, 10, 20, 20), solid(2, 2, color.Black))
	img := s.Render(RenderOptions{})
	if got := img.RGBAAt(50, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("empty canvas pixel = %v", got)
	}
}

func TestStaleBackgroundDiscarded(t *testing.T) {
	release := make(chan struct{})
	loader := imageio.LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		if ref == "slow" {
			<-release
			return solid(10, 10, color.Black), nil
		}
		return solid(20, 10, color.White), nil
	})
	s := New(geom.Sz(200, 100), WithLoader(loader))
	defer s.Close()

	s.SetBackground(context.Background(), "slow")
	if err := s.LoadBackground(context.Background(), "fast"); err != nil {
		t.Fatal(err)
	}
	close(release)
	s.Wait()

	bg, _ := s.Background()
	if bg.Ref != "fast" || bg.Native != geom.Sz(20, 10) {
		t.Errorf("background = %+v, want the later load", bg)
	}
}

func TestSupersededLoadReportsError(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	loader := imageio.LoaderFunc(func(ctx context.Context, ref string) (image.Image, error) {
		if ref == "slow" {
			close(started)
			<-release
			return solid(10, 10, color.Black), nil
		}
		return solid(20, 10, color.White), nil
	})
	s := New(geom.Sz(200, 100), WithLoader(loader))
	defer s.Close()

	slow := make(chan error, 1)
	go func() { slow <- s.LoadBackground(context.Background(), "slow") }()
	<-started
	if err := s.LoadBackground(context.Background(), "fast"); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-slow; !errors.Is(err, ErrSuperseded) {
		t.Errorf("superseded load: err = %v, want ErrSuperseded", err)
	}
	if bg, _ := s.Background(); bg.Ref != "fast" {
		t.Errorf("background ref = %q, want fast", bg.Ref)
	}
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s := New(geom.Sz(100, 100))
	defer s.Close()
	rec := record(s)

	rot := 45.0
	s.Update("nope", GeometryPatch{Rotation: &rot})
	s.Remove("nope")
	s.Reorder("nope", Front)
	s.UpdateText(layer.TextLayer{ID: "nope"})
	if s.Len() != 0 || len(rec.events) != 0 {
		t.Errorf("unknown ids changed state: len=%d events=%v", s.Len(), rec.events)
	}
}

func TestProgrammaticUpdateDoesNotEmit(t *testing.T) {
	s := New(geom.Sz(400, 400))
	defer s.Close()
	rec := record(s)
	s.AddMediaImage(media("m", 10, 10, 100, 50), solid(4, 2, color.Black))

	pos := geom.Pt(50, 60)
	rot := -90.0
	s.Update("m", GeometryPatch{Position: &pos, Rotation: &rot})
	info, _ := s.Object("m")
	if info.Geometry.Position != pos || info.Geometry.Rotation != 270 {
		t.Errorf("geometry = %+v", info.Geometry)
	}
	if n := len(rec.of(ObjectModified)); n != 0 {
		t.Errorf("programmatic update emitted %d ObjectModified", n)
	}

	bad := layer.Scale{X: 0, Y: 2}
	s.Update("m", GeometryPatch{Scale: &bad})
	if info, _ := s.Object("m"); info.Geometry.Scale != (layer.Scale{X: 1, Y: 1}) {
		t.Errorf("non-positive scale accepted: %+v", info.Geometry.Scale)
	}
}

func TestReorderSingleStep(t *testing.T) {
	s := New(geom.Sz(400, 400))
	defer s.Close()
	for _, id := range []string{"a", "b", "c", "d"} {
		s.AddMediaImage(media(id, 0, 0, 10, 10), solid(1, 1, color.Black))
	}

	s.Reorder("b", Front)
	s.Reorder("c", Back)
	want := []string{"c", "a", "d", "b"}
	if got := s.Order(); !slices.Equal(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New(geom.Sz(100, 100))
	defer s.Close()
	s.AddMediaImage(media("m", 0, 0, 10, 10), solid(1, 1, color.Black))
	s.Select("m")
	s.Remove("m")
	s.Remove("m")
	if s.Has("m") || s.Len() != 0 {
		t.Error("object survived Remove")
	}
	if _, ok := s.Selected(); ok {
		t.Error("removed object still selected")
	}
}

func TestObjectsBounds(t *testing.T) {
	s := New(geom.Sz(400, 400))
	defer s.Close()
	m := media("m", 100, 100, 100, 50)
	m.Rotation = 90
	s.AddMediaImage(m, solid(1, 1, color.Black))

	objs := s.Objects()
	if len(objs) != 1 {
		t.Fatalf("Objects len = %d", len(objs))
	}
	b := objs[0].Bounds
	want := geom.R(125, 75, 50, 100)
	for _, p := range [][2]float64{{b.X, want.X}, {b.Y, want.Y}, {b.Width, want.Width}, {b.Height, want.Height}} {
		if !scalar.EqualWithinAbs(p[0], p[1], 1e-6) {
			t.Fatalf("Bounds = %v, want %v", b, want)
		}
	}
}

func TestTextMeasureAndUpdate(t *testing.T) {
	s := New(geom.Sz(800, 600))
	defer s.Close()

	l := layer.DefaultText(layer.Paragraph)
	l.ID = "t"
	l.Content = "one\ntwo lines"
	s.AddText(l)

	info, ok := s.Object("t")
	if !ok {
		t.Fatal("text object missing")
	}
	if info.Kind != KindText || info.TextKind != layer.Paragraph {
		t.Errorf("info = %+v", info)
	}
	if info.Size != s.MeasureText(l) {
		t.Errorf("Size = %v, MeasureText = %v", info.Size, s.MeasureText(l))
	}
	single := l
	single.Content = "one"
	if hs := s.MeasureText(single).Height; info.Size.Height < 1.9*hs {
		t.Errorf("two lines height %v vs one line %v", info.Size.Height, hs)
	}

	l.FontSize *= 2
	s.UpdateText(l)
	if got, _ := s.Object("t"); got.Size.Width <= info.Size.Width {
		t.Errorf("bigger font did not grow the box: %v -> %v", info.Size, got.Size)
	}
}

func TestFontUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand.ttf")
	if err := os.WriteFile(path, gobold.TTF, 0o600); err != nil {
		t.Fatal(err)
	}
	reg := fonts.NewRegistry(fonts.FinderFunc(func(family string) (string, bool) {
		return path, family == "Brand Sans"
	}))
	s := New(geom.Sz(800, 600), WithFonts(reg))
	defer s.Close()
	rec := record(s)

	l := layer.DefaultText(layer.Custom)
	l.ID = "t"
	l.FontFamily = "Brand Sans"
	s.AddText(l)

	missing := layer.DefaultText(layer.Custom)
	missing.ID = "u"
	missing.FontFamily = "Nowhere Serif"
	s.AddText(missing)
	s.Wait()

	ups := rec.of(FontUpgraded)
	if len(ups) != 1 || ups[0].ID != "t" {
		t.Errorf("FontUpgraded = %+v", ups)
	}
	if !s.Has("u") {
		t.Error("object with an unknown family was dropped")
	}
	if _, ok := reg.Cached("Brand Sans"); !ok {
		t.Error("font was not cached")
	}
}

func TestMediaLoadEvents(t *testing.T) {
	s := New(geom.Sz(400, 400), WithLoader(mapLoader(map[string]image.Image{
		"mem://ok": solid(4, 4, color.Black),
	})))
	defer s.Close()
	rec := record(s)

	s.AddMedia(media("ok", 0, 0, 40, 40))
	s.AddMedia(media("bad", 50, 50, 40, 40))
	s.Wait()

	if got := rec.of(MediaLoaded); len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("MediaLoaded = %+v", got)
	}
	if got := rec.of(MediaFailed); len(got) != 1 || got[0].ID != "bad" {
		t.Errorf("MediaFailed = %+v", got)
	}
	if s.MediaErr("bad") == nil || s.MediaErr("ok") != nil {
		t.Errorf("MediaErr ok=%v bad=%v", s.MediaErr("ok"), s.MediaErr("bad"))
	}
	// The placeholder still renders.
	img := s.Render(RenderOptions{})
	if got := img.RGBAAt(70, 70); got == (color.RGBA{255, 255, 255, 255}) {
		t.Error("placeholder not drawn")
	}
}

func TestStateAndRestoreOrder(t *testing.T) {
	s := New(geom.Sz(300, 200), WithLoader(mapLoader(map[string]image.Image{"bg": solid(30, 20, color.White)})))
	defer s.Close()
	s.LoadBackground(context.Background(), "bg")
	for _, id := range []string{"a", "b", "c"} {
		s.AddMediaImage(media(id, 0, 0, 10, 10), solid(1, 1, color.Black))
	}

	st := s.State()
	if st.Background == nil || st.Background.Ref != "bg" {
		t.Errorf("Background = %+v", st.Background)
	}
	if !slices.Equal(st.Order(), []string{"a", "b", "c"}) {
		t.Errorf("Order = %v", st.Order())
	}

	s.RestoreOrder([]string{"c", "ghost", "a"})
	if got := s.Order(); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("restored order = %v", got)
	}
}

func TestHandlersMayCallBack(t *testing.T) {
	s := New(geom.Sz(100, 100))
	defer s.Close()
	var seen int
	s.Subscribe(func(e Event) {
		if e.Kind == SelectionChanged {
			seen = len(s.Objects())
		}
	})
	s.AddMediaImage(media("m", 0, 0, 10, 10), solid(1, 1, color.Black))
	s.Select("m")
	if seen != 1 {
		t.Errorf("handler saw %d objects", seen)
	}
}
