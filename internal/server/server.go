package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/boardexport/internal/api/v1"
	"github.com/gosuda/boardexport/internal/config"
	"github.com/gosuda/boardexport/internal/server/middleware"
)

// ServiceName is reported by the info endpoint and the OpenAPI document.
const ServiceName = "boardexport"

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	cfg        *config.Config
}

// New creates a Server with all routes wired. ctx bounds background work
// started by middleware such as limiter cleanup.
func New(ctx context.Context, cfg *config.Config, exporter v1.Exporter, creds v1.Credentials, version string) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.AccessLog)
	router.Use(chimw.Recoverer)

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		v1.WriteError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		v1.WriteError(w, http.StatusMethodNotAllowed, v1.MsgMethodNotAllowed)
	})

	s := &Server{
		router: router,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Export endpoint: rate limited, session-verified when a signing secret is set.
	// CORS runs first so preflights skip rate limiting and session checks.
	router.Group(func(r chi.Router) {
		r.Use(newCORS(cfg.Server.CORSOrigins, http.MethodPost, http.MethodOptions))
		r.Use(middleware.RateLimitByIP(ctx, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
		if cfg.Credential.SigningSecret != "" {
			r.Use(middleware.VerifySession(cfg.Credential.SigningSecret))
			log.Info().Msg("session token verification enabled")
		}
		registerExportRoutes(r, v1.NewExportHandler(exporter, creds))
	})

	// Service information and OpenAPI document on /api/v1.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(newCORS(cfg.Server.CORSOrigins, http.MethodGet))
		apiConfig := huma.DefaultConfig("Board Export API", version)
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, v1.ServiceInfo{
			Service:             ServiceName,
			Version:             version,
			CredentialMode:      creds.Mode(),
			APIVersion:          cfg.Monday.APIVersion,
			SheetName:           cfg.Export.SheetName,
			FilenamePrefix:      cfg.Export.FilenamePrefix,
			SessionVerification: cfg.Credential.SigningSecret != "",
		})
	})

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// newCORS returns a CORS middleware allowing only methods. Preflights are
// answered with 200 and never reach the route handler.
func newCORS(origins []string, methods ...string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       methods,
		AllowedHeaders:       []string{"Content-Type", "Authorization"},
		ExposedHeaders:       []string{"Content-Disposition", v1.HeaderExportID, "X-Request-ID"},
		OptionsSuccessStatus: http.StatusOK,
		MaxAge:               300,
	}).Handler
}

// Handler returns the router for use outside the built-in http.Server, such
// as the function URL adapter.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
