// Package server implements the lattice HTTP inspector.
//
// Clients post scenes, the server runs them through the pipeline and keeps
// each report as a session in the configured cache:
//
//	POST   /scenes           run a scene, returns {"id": ...}
//	GET    /scenes/{id}      the session and its report
//	GET    /scenes/{id}/svg  the final tree as a Graphviz diagram
//	GET    /scenes/{id}/dot  the same diagram as DOT source
//	DELETE /scenes/{id}      forget a session
//	GET    /healthz          liveness and build information
//
// Sessions are stored under [cache.Keyer.SessionKey], so several inspector
// instances behind a load balancer can share a Redis or Mongo backend.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/pipeline"
)

// Options configure a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxSceneBytes caps request bodies of POST /scenes.
	MaxSceneBytes int64

	// TTL is how long sessions live. Zero keeps them until the backend
	// evicts them.
	TTL time.Duration

	Engine layout.Options
	Logger *log.Logger
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:8080"
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 30 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 60 * time.Second
	}
	if o.MaxSceneBytes == 0 {
		o.MaxSceneBytes = 1 << 20
	}
	if o.TTL == 0 {
		o.TTL = DefaultSessionTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Engine.SetDefaults()
}

// Server serves the inspector API.
type Server struct {
	runner   *pipeline.Runner
	sessions *Store
	opts     Options
	router   chi.Router
}

// New creates a server that runs scenes with runner and stores sessions in
// the runner's cache.
func New(runner *pipeline.Runner, opts Options) *Server {
	opts.SetDefaults()
	s := &Server{
		runner:   runner,
		sessions: NewStore(runner.Cache, runner.Keyer),
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/scenes", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleDiagram(pipeline.FormatSVG))
			r.Get("/dot", s.handleDiagram(pipeline.FormatDOT))
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound("no route for %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("inspector listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.opts.Logger.Info("shutting down inspector")
		return srv.Shutdown(shutdownCtx)
	}
}
