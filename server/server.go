// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package server exposes editor sessions over a JSON HTTP API.
//
// Each session owns one ggedit.Editor and is addressed by a UUID. Drafts
// are shared by all sessions through one draft store.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/draft"
	"github.com/gogpu/ggedit/geom"
	"github.com/gogpu/ggedit/internal/logx"
	"github.com/google/uuid"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("server: too many sessions")

// ErrUnknownSession is returned for session ids that do not exist.
var ErrUnknownSession = errors.New("server: unknown session")

// Server holds the live sessions and serves the API.
type Server struct {
	canvas      geom.Size
	editorOpts  []ggedit.Option
	drafts      *draft.Store
	maxSessions int
	origins     []string
	limiter     *visitors
	registry    *prometheus.Registry
	log         *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id      string
	ed      *ggedit.Editor
	created time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCanvas sets the canvas size of sessions created without one.
func WithCanvas(size geom.Size) Option {
	return func(s *Server) {
		if !size.Empty() {
			s.canvas = size
		}
	}
}

// WithEditorOptions adds options passed to every new editor.
func WithEditorOptions(opts ...ggedit.Option) Option {
	return func(s *Server) { s.editorOpts = append(s.editorOpts, opts...) }
}

// WithDrafts sets the shared draft store. Without one the draft routes
// answer 501.
func WithDrafts(st *draft.Store) Option {
	return func(s *Server) { s.drafts = st }
}

// WithMaxSessions bounds the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithRateLimit limits each client to r requests per second with the given
// burst. r <= 0 disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newVisitors(r, burst)
	}
}

// WithLogger sets the server logger. The default is ggedit.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Server with its own metrics registry.
func New(opts ...Option) *Server {
	s := &Server{
		canvas:      geom.Sz(800, 600),
		maxSessions: 64,
		origins:     []string{"*"},
		limiter:     newVisitors(5, 30),
		registry:    prometheus.NewRegistry(),
		log:         logx.With("server"),
		sessions:    make(map[string]*session),
	}
	for _, o := range opts {
		o(s)
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestDuration,
		sessionsGauge,
	)
	if err := ggedit.RegisterMetrics(s.registry); err != nil {
		s.log.Warn("editor metrics not registered", "err", err)
	}
	return s
}

// Handler returns the API router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})

	standard := r.PathPrefix("/").Subrouter()
	if s.limiter != nil {
		standard.Use(s.limiter.middleware)
	}
	standard.Use(monitor)

	standard.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	standard.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := standard.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sessions", s.createSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.getSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.deleteSession).Methods(http.MethodDelete)

	api.HandleFunc("/sessions/{id}/layers/text", s.addTextLayer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/layers/media", s.addMediaLayer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/layers/{layer}", s.updateLayer).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}/layers/{layer}", s.removeLayer).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/layers/{layer}/{dir:front|back}", s.reorderLayer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/filters", s.updateFilters).Methods(http.MethodPatch)

	api.HandleFunc("/sessions/{id}/crop", s.toggleCrop).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/crop", s.cancelCrop).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/crop/aspect", s.setCropAspect).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/crop/apply", s.applyCrop).Methods(http.MethodPost)

	api.HandleFunc("/sessions/{id}/pointer", s.pointer).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/export", s.export).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/ai", s.aiEdit).Methods(http.MethodPost)

	api.HandleFunc("/sessions/{id}/drafts", s.saveDraft).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/drafts/{draft}/load", s.loadDraft).Methods(http.MethodPost)
	api.HandleFunc("/drafts", s.listDrafts).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{draft}", s.renameDraft).Methods(http.MethodPatch)
	api.HandleFunc("/drafts/{draft}", s.deleteDraft).Methods(http.MethodDelete)

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(s.origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition"}),
	)
	return cors(r)
}

// Run serves on addr until ctx is done, then shuts down gracefully and
// closes every session.
func (s *Server) Run(ctx context.Context, srv *http.Server) error {
	if srv.Handler == nil {
		srv.Handler = s.Handler()
	}
	if srv.ErrorLog == nil {
		srv.ErrorLog = logx.Std("http")
	}
	if s.limiter != nil {
		go s.limiter.cleanup(ctx, time.Minute, 3*time.Minute)
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	s.log.Info("shutdown complete")
	return err
}

// Close ends every session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()
	for _, ss := range sessions {
		_ = ss.ed.Close()
	}
	sessionsGauge.Set(0)
}

func (s *Server) newSession(size geom.Size) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		return nil, ErrTooManySessions
	}
	opts := append([]ggedit.Option(nil), s.editorOpts...)
	if s.drafts != nil {
		opts = append(opts, ggedit.WithDraftStore(s.drafts))
	}
	ss := &session{id: uuid.NewString(), ed: ggedit.New(size, opts...), created: time.Now()}
	s.sessions[ss.id] = ss
	sessionsGauge.Set(float64(len(s.sessions)))
	return ss, nil
}

func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return ss, nil
}

func (s *Server) dropSession(id string) bool {
	s.mu.Lock()
	ss, ok := s.sessions[id]
	delete(s.sessions, id)
	sessionsGauge.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	if ok {
		_ = ss.ed.Close()
	}
	return ok
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	respondWithJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "ggedit", "sessions": n})
}
