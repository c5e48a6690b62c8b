// Package server exposes the greetcard pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/greetcard/pkg/artifact"
	"github.com/matzehuels/greetcard/pkg/pipeline"
	"github.com/matzehuels/greetcard/pkg/template"
)

// DefaultRequestTimeout bounds a single request, including rendering.
const DefaultRequestTimeout = 60 * time.Second

// Options configure a Server.
type Options struct {
	Runner    *pipeline.Runner
	Artifacts *artifact.Store
	Logger    *log.Logger

	// BaseURL is the public origin used for share links. Empty means the
	// origin of each request.
	BaseURL string

	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server handles the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	templates *template.Store
	artifacts *artifact.Store
	logger    *log.Logger
	baseURL   string
	opts      Options
	router    chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		runner:    opts.Runner,
		templates: opts.Runner.Templates,
		artifacts: opts.Artifacts,
		logger:    opts.Logger.WithPrefix("http"),
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		opts:      opts,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)

	templates := noDirListing(http.FileServer(http.Dir(s.templates.Dir())))
	timeout := middleware.Timeout(s.opts.RequestTimeout)

	r.With(timeout).Post("/generate", s.handleGenerate)
	r.Get("/generated/{name}", s.handleArtifact)
	r.Handle("/templates/*", http.StripPrefix("/templates", templates))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeout)
			r.Post("/generate", s.handleGenerate)
			r.Get("/templates", s.handleTemplateList)
			r.Get("/template-check", s.handleTemplateCheck)
			r.Get("/template-meta", s.handleTemplateMeta)
			r.Post("/update-template", s.handleUpdateTemplate)
			r.Get("/layout", s.handleLayout)
			r.Get("/preview", s.handlePreview)
			r.Post("/preview", s.handlePreview)
			r.Get("/share", s.handleShare)
			r.Get("/qr", s.handleQR)
		})
		r.Get("/generated/{name}", s.handleArtifact)
		r.Handle("/templates/*", http.StripPrefix("/api/templates", templates))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// cors allows any origin, as the web editor may be served separately.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
