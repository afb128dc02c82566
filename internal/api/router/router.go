// Package router provides HTTP routing configuration using Chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EdibuLLC/JSONWebToken/internal/api/handler"
	"github.com/EdibuLLC/JSONWebToken/internal/api/middleware"
	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

// Config holds router configuration.
type Config struct {
	Version  string
	Keys     *service.KeySet
	Profiles *profile.Store
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORS)

	// Health endpoints (always enabled)
	healthHandler := handler.NewHealthHandler(cfg.Version, cfg.Keys.IDs())
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Published key set for verifiers
	jwksHandler := handler.NewJWKSHandler(cfg.Keys)
	r.Get("/.well-known/jwks.json", jwksHandler.JWKS)

	// Create services
	tokenService := service.NewTokenService(cfg.Keys, cfg.Profiles)
	profileService := service.NewProfileService(cfg.Profiles)

	// Create handlers
	tokenHandler := handler.NewTokenHandler(tokenService)
	profileHandler := handler.NewProfileHandler(profileService)

	r.Route("/api/v1", func(r chi.Router) {
		// Token operations
		r.Route("/token", func(r chi.Router) {
			r.Post("/sign", tokenHandler.Sign)
			r.Post("/verify", tokenHandler.Verify)
			r.Post("/decode", tokenHandler.Decode)
		})

		// Profile operations
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileHandler.List)
			r.Get("/{name}", profileHandler.Get)
		})
	})

	return r
}
