package httpapi

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

//go:embed assets/*
var embeddedAssets embed.FS

const requestIDHeader = "X-Request-ID"

// Options configures the parts of the HTTP transport that vary per deployment.
type Options struct {
	AllowedOrigins []string
	// StaticDir replaces the embedded demo page when set.
	StaticDir string
}

// Server exposes the HTTP transport for the correction service.
type Server struct {
	handler http.Handler
}

// NewServer constructs an HTTP server that forwards requests to the correction service.
func NewServer(service domain.CorrectionService, logger *infra.Logger, opts Options) *Server {
	router := chi.NewRouter()

	router.Use(infra.HTTPMiddleware(func(r *http.Request) string {
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				return pattern
			}
		}
		return r.URL.Path
	}))
	router.Use(middleware.Recoverer)
	router.Use(correlationID)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	h := &handler{service: service, logger: logger}
	registerRoutes(router, h, staticHandler(opts.StaticDir, logger))

	return &Server{handler: router}
}

// Router returns the configured HTTP handler for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.handler
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// correlationID propagates the caller's request id, or a fresh one, into the
// context used for logging and echoes it back.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(infra.WithCorrelationID(r.Context(), id)))
	})
}

func staticHandler(dir string, logger *infra.Logger) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	assetsFS, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		logger.Errorf(context.Background(), "static assets unavailable: %v", err)
		return nil
	}
	return http.FileServer(http.FS(assetsFS))
}
