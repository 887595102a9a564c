// Package server provides the HTTP reader API and handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bryan-buckman/newsdigest/internal/feedxml"
	"github.com/bryan-buckman/newsdigest/internal/model"
	"github.com/bryan-buckman/newsdigest/internal/pipeline"
	"github.com/bryan-buckman/newsdigest/internal/publish"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RefreshTimeout bounds a manual refresh.
const RefreshTimeout = 10 * time.Minute

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) pipeline.Result
}

// Reader loads published digests.
type Reader interface {
	Latest(ctx context.Context) (model.Digest, error)
	ForDate(ctx context.Context, date string) (model.Digest, error)
}

// Options configures a Server.
type Options struct {
	Runner Runner
	Reader Reader
	Poller *pipeline.Poller // optional
	Topic  string

	// RefreshCooldown is the minimum spacing between manual refreshes.
	// Zero disables limiting.
	RefreshCooldown time.Duration
}

// Server is the main HTTP server.
type Server struct {
	runner  Runner
	reader  Reader
	poller  *pipeline.Poller
	limiter *rate.Limiter
	topic   string
	router  chi.Router
}

// New creates a new server.
func New(opts Options) *Server {
	limit := rate.Inf
	if opts.RefreshCooldown > 0 {
		limit = rate.Every(opts.RefreshCooldown)
	}
	s := &Server{
		runner:  opts.Runner,
		reader:  opts.Reader,
		poller:  opts.Poller,
		limiter: rate.NewLimiter(limit, 1),
		topic:   opts.Topic,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/news", s.handleLatest)
		r.Get("/news.rss", s.handleRSS)
		r.Get("/news/{date}", s.handleForDate)
		r.Post("/refresh", s.handleRefresh)
	})

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the poller, if any, and serves HTTP until the listener fails.
func (s *Server) Start(addr string) error {
	if s.poller != nil {
		s.poller.Start()
	}
	slog.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop stops the poller.
func (s *Server) Stop() {
	if s.poller != nil {
		s.poller.Stop()
	}
}

// --- API Handlers ---

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	digest, err := s.reader.Latest(r.Context())
	if err != nil {
		slog.Error("reading latest digest", "error", err)
		digest = model.Digest{}
	}
	writeJSON(w, http.StatusOK, nonNil(digest))
}

func (s *Server) handleForDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	digest, err := s.reader.ForDate(r.Context(), date)
	switch {
	case errors.Is(err, publish.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No digest for " + date})
	case errors.Is(err, publish.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid date, expected YYYY-MM-DD"})
	case err != nil:
		slog.Error("reading dated digest", "date", date, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Failed to read digest"})
	default:
		writeJSON(w, http.StatusOK, nonNil(digest))
	}
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	digest, err := s.reader.Latest(r.Context())
	if err != nil {
		slog.Error("reading latest digest", "error", err)
		digest = model.Digest{}
	}

	data, err := feedxml.Export(feedxml.Meta{
		Topic: s.topic,
		Link:  "http://" + r.Host + "/api/news",
		Built: time.Now(),
	}, digest)
	if err != nil {
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"detail": "Refresh already requested recently, try again later"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), RefreshTimeout)
	defer cancel()

	res := s.runner.Run(ctx)
	if !res.Outcome.OK() {
		writeJSON(w, res.Outcome.StatusCode(), map[string]string{"detail": res.Outcome.Message()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": res.Outcome.Message(),
		"data":    nonNil(res.Digest),
	})
}

// --- Helpers ---

func nonNil(d model.Digest) model.Digest {
	if d == nil {
		return model.Digest{}
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
