// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/crop"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/layer"
	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

// commandTimeout bounds commands that load images or talk to a collaborator.
const commandTimeout = 30 * time.Second

type createSessionRequest struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
}

type sessionResponse struct {
	ID       string          `json:"id"`
	Snapshot ggedit.Snapshot `json:"snapshot"`
}

type textLayerRequest struct {
	Kind    layer.TextKind `json:"kind"`
	Content string         `json:"content"`
}

type mediaLayerRequest struct {
	Kind      layer.MediaKind `json:"kind"`
	SourceURL string          `json:"sourceUrl"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
}

type aspectRequest struct {
	Aspect string `json:"aspect"`
}

type pointerRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

// draftSummary is a draft without its content.
type draftSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

func summarize(d draft.Draft) draftSummary {
	return draftSummary{ID: d.ID, Name: d.Name, Timestamp: d.Timestamp}
}

// withSession resolves the {id} route variable.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*ggedit.Editor, bool) {
	ss, err := s.session(mux.Vars(r)["id"])
	if err != nil {
		respondWithErr(w, err)
		return nil, false
	}
	return ss.ed, true
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	size := s.canvas
	if req.Width > 0 && req.Height > 0 {
		size = geom.Sz(req.Width, req.Height)
	}
	ss, err := s.newSession(size)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	if req.Background != "" {
		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()
		if err := ss.ed.Open(ctx, req.Background); err != nil {
			s.dropSession(ss.id)
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	s.log.Info("session created", "id", ss.id, "size", size)
	respondWithJSON(w, http.StatusCreated, sessionResponse{ID: ss.id, Snapshot: ss.ed.Snapshot()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{ID: mux.Vars(r)["id"], Snapshot: ed.Snapshot()})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.dropSession(mux.Vars(r)["id"]) {
		respondWithErr(w, ErrUnknownSession)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addTextLayer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req textLayerRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	if !req.Kind.Valid() {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown text kind %q", req.Kind))
		return
	}
	l, err := ed.AddTextLayer(req.Kind, req.Content)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, l)
}

func (s *Server) addMediaLayer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req mediaLayerRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	if req.Kind == "" {
		req.Kind = layer.Image
	}
	if !req.Kind.Valid() || req.SourceURL == "" {
		respondWithError(w, http.StatusBadRequest, "media layer needs a known kind and a sourceUrl")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	m, err := ed.AddMediaLayer(ctx, ggedit.MediaDescriptor{
		Kind:      req.Kind,
		SourceURL: req.SourceURL,
		Width:     req.Width,
		Height:    req.Height,
	})
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, m)
}

func (s *Server) updateLayer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var p layer.Patch
	if err := decode(r, &p); err != nil {
		respondWithErr(w, err)
		return
	}
	id := mux.Vars(r)["layer"]
	if err := ed.UpdateLayer(id, p); err != nil {
		respondWithErr(w, err)
		return
	}
	if t, ok := ed.Model().TextLayer(id); ok {
		respondWithJSON(w, http.StatusOK, t)
		return
	}
	m, _ := ed.Model().MediaLayer(id)
	respondWithJSON(w, http.StatusOK, m)
}

func (s *Server) removeLayer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	ed.RemoveLayer(mux.Vars(r)["layer"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorderLayer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	if vars["dir"] == "back" {
		ed.SendToBack(vars["layer"])
	} else {
		ed.BringToFront(vars["layer"])
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"order": ed.Layers()})
}

func (s *Server) updateFilters(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var p layer.FiltersPatch
	if err := decode(r, &p); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ed.UpdateFilters(p))
}

func (s *Server) toggleCrop(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if err := ed.ToggleCrop(); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ed.Snapshot().Crop)
}

func (s *Server) cancelCrop(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	ed.CancelCrop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setCropAspect(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req aspectRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	if err := ed.SetCropAspect(crop.Aspect(req.Aspect)); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ed.Snapshot().Crop)
}

func (s *Server) applyCrop(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	size, err := ed.ApplyCrop(ctx)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]float64{"width": size.Width, "height": size.Height})
}

func (s *Server) pointer(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	p := geom.Pt(req.X, req.Y)
	surf := ed.Surface()
	switch req.Type {
	case "down":
		surf.PointerDown(p)
	case "move":
		surf.PointerMove(p)
	case "up":
		surf.PointerUp(p)
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown pointer type %q", req.Type))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(ggedit.FormatPNG)
	}
	f, err := ggedit.ParseFormat(name)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	var buf bytes.Buffer
	if err := ed.ExportRaster(ctx, &buf, f); err != nil {
		respondWithErr(w, err)
		return
	}
	ext := string(f)
	if f == ggedit.FormatJPEG {
		ext = "jpg"
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="canvas.%s"`, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) aiEdit(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req instructionRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	if err := ed.EditWithAI(r.Context(), req.Instruction); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ed.Snapshot())
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	d, err := ed.SaveDraft(r.Context(), req.Name)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, summarize(d))
}

func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request) {
	ed, ok := s.withSession(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	if err := ed.LoadDraft(ctx, mux.Vars(r)["draft"]); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ed.Snapshot())
}

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		respondWithErr(w, ggedit.ErrNoDraftStore)
		return
	}
	respondWithJSON(w, http.StatusOK, lo.Map(s.drafts.List(r.Context()), func(d draft.Draft, _ int) draftSummary {
		return summarize(d)
	}))
}

func (s *Server) renameDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		respondWithErr(w, ggedit.ErrNoDraftStore)
		return
	}
	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondWithErr(w, err)
		return
	}
	if err := s.drafts.Rename(r.Context(), mux.Vars(r)["draft"], req.Name); err != nil {
		respondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		respondWithErr(w, ggedit.ErrNoDraftStore)
		return
	}
	if err := s.drafts.Delete(r.Context(), mux.Vars(r)["draft"]); err != nil {
		respondWithErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
