package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/balasai14/multi-face-reg/internal/auth"
	"github.com/balasai14/multi-face-reg/internal/config"
	"github.com/balasai14/multi-face-reg/internal/database"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
	"github.com/balasai14/multi-face-reg/internal/extractor"
	"github.com/balasai14/multi-face-reg/internal/identity"
	"github.com/balasai14/multi-face-reg/internal/recognize"
	"github.com/balasai14/multi-face-reg/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	issuer     *auth.Issuer
	service    *identity.Service
	validator  *descriptor.Validator
	index      *recognize.Index
	extractor  *extractor.Client
}

// NewServer creates a new web server wired to the given identity repository.
func NewServer(cfg *config.Config, port int, host string, repo database.IdentityRepository) (*Server, error) {
	// A missing signing secret must stop the process here, before any
	// verification traffic is served.
	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("configuring token issuer: %w", err)
	}

	validator := descriptor.NewValidator(cfg.Matching.DescriptorDim, cfg.Matching.ValueBound)
	matcher := descriptor.NewMatcher(cfg.Matching.Threshold)
	service := identity.NewService(repo, validator, matcher, issuer)
	index := recognize.NewIndex(cfg.Matching.Threshold)

	r := chi.NewRouter()

	s := &Server{
		config:    cfg,
		router:    r,
		issuer:    issuer,
		service:   service,
		validator: validator,
		index:     index,
		extractor: extractor.NewClient(cfg.Extractor.URL),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes()

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// RebuildIndex loads all enrolled identities into the identification index.
func (s *Server) RebuildIndex(ctx context.Context, repo database.IdentityReader) error {
	identities, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading identities for index: %w", err)
	}
	if err := s.index.Rebuild(identities); err != nil {
		return fmt.Errorf("rebuilding identification index: %w", err)
	}
	log.Printf("Identification index built with %d identities", s.index.Size())
	return nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
