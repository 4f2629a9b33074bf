// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package draft persists named snapshots of editor state.
//
// All drafts live as a single JSON array under one key of a kv.Store. The
// record shape is stable: it is read back by older and newer editors alike.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gogpu/ggedit/internal/logx"
	"github.com/gogpu/ggedit/kv"
	"github.com/gogpu/ggedit/layer"
	"github.com/samber/lo"
)

// DefaultKey is the storage key of the draft list.
const DefaultKey = "ggedit:drafts"

// ErrNotFound is returned by Load and Rename for unknown draft ids.
var ErrNotFound = errors.New("draft: not found")

// errCorrupt marks a stored list that is not valid JSON.
var errCorrupt = errors.New("draft: corrupt list")

// State is the editor content captured by a draft.
type State struct {
	OriginalImageURL string             `json:"originalImageUrl"`
	CanvasState      json.RawMessage    `json:"canvasState"`
	TextLayers       []layer.TextLayer  `json:"textLayers"`
	MediaLayers      []layer.MediaLayer `json:"mediaLayers"`
	ImageFilters     layer.ImageFilters `json:"imageFilters"`
	CanvasWidth      float64            `json:"canvasWidth"`
	CanvasHeight     float64            `json:"canvasHeight"`
}

// Draft is a stored State with its identity.
type Draft struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
	State
}

// Time returns the save time of d.
func (d Draft) Time() time.Time { return time.UnixMilli(d.Timestamp) }

// Store reads and writes drafts. It is safe for concurrent use within one
// process; concurrent writers in different processes race last-writer-wins.
type Store struct {
	kv  kv.Store
	key string
	now func() time.Time
	log *slog.Logger
	mu  sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a draft store on top of backend.
func NewStore(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:  backend,
		key: DefaultKey,
		now: time.Now,
		log: logx.With("draft"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all drafts in save order. Storage and decode failures are
// logged and yield an empty list.
func (s *Store) List(ctx context.Context) []Draft {
	drafts, err := s.read(ctx)
	if err != nil {
		s.log.Warn("list drafts", "err", err)
		return []Draft{}
	}
	return drafts
}

// Save appends a new draft and returns it. An empty name gets a
// timestamped default.
func (s *Store) Save(ctx context.Context, name string, st State) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.readForWrite(ctx)
	if err != nil {
		return Draft{}, err
	}
	now := s.now()
	ms := now.UnixMilli()
	for lo.ContainsBy(drafts, func(d Draft) bool { return d.ID == draftID(ms) }) {
		ms++
	}
	if name == "" {
		name = "Draft " + now.Format("2006-01-02 15:04:05")
	}
	d := Draft{ID: draftID(ms), Name: name, Timestamp: now.UnixMilli(), State: normalize(st)}
	drafts = append(drafts, d)
	if err := s.write(ctx, drafts); err != nil {
		return Draft{}, err
	}
	s.log.Info("draft saved", "id", d.ID, "name", d.Name)
	return d, nil
}

// Load returns the draft with the given id.
func (s *Store) Load(ctx context.Context, id string) (Draft, error) {
	drafts, err := s.read(ctx)
	if err != nil {
		return Draft{}, err
	}
	d, ok := lo.Find(drafts, func(d Draft) bool { return d.ID == id })
	if !ok {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

// Rename changes the name of a draft.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.readForWrite(ctx)
	if err != nil {
		return err
	}
	_, i, ok := lo.FindIndexOf(drafts, func(d Draft) bool { return d.ID == id })
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	drafts[i].Name = name
	return s.write(ctx, drafts)
}

// Delete removes a draft. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drafts, err := s.readForWrite(ctx)
	if err != nil {
		return err
	}
	kept := lo.Filter(drafts, func(d Draft, _ int) bool { return d.ID != id })
	if len(kept) == len(drafts) {
		return nil
	}
	return s.write(ctx, kept)
}

func (s *Store) read(ctx context.Context) ([]Draft, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft: read: %w", err)
	}
	var drafts []Draft
	if err := json.Unmarshal(data, &drafts); err != nil {
		return nil, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	if drafts == nil {
		drafts = []Draft{}
	}
	return drafts, nil
}

// readForWrite treats a corrupt list as empty so that the next write
// replaces it. Storage errors are returned.
func (s *Store) readForWrite(ctx context.Context) ([]Draft, error) {
	drafts, err := s.read(ctx)
	if errors.Is(err, errCorrupt) {
		s.log.Warn("discarding corrupt drafts", "err", err)
		return []Draft{}, nil
	}
	return drafts, err
}

func (s *Store) write(ctx context.Context, drafts []Draft) error {
	data, err := json.Marshal(drafts)
	if err != nil {
		return fmt.Errorf("draft: encode: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("draft: write: %w", err)
	}
	return nil
}

func draftID(ms int64) string { return "draft-" + strconv.FormatInt(ms, 10) }

func normalize(st State) State {
	if st.TextLayers == nil {
		st.TextLayers = []layer.TextLayer{}
	}
	if st.MediaLayers == nil {
		st.MediaLayers = []layer.MediaLayer{}
	}
	if len(st.CanvasState) == 0 {
		st.CanvasState = json.RawMessage("null")
	}
	return st
}
