package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/EdibuLLC/JSONWebToken/internal/api/router"
	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

// Server represents the HTTP server.
type Server struct {
	cfg     *Config
	version string
	srv     *http.Server
}

// New creates a new Server.
func New(cfg *Config, version string) *Server {
	return &Server{
		cfg:     cfg,
		version: version,
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	keys, err := service.LoadKeySet(s.cfg.Keys)
	if err != nil {
		return fmt.Errorf("failed to load signing keys: %w", err)
	}

	profiles := profile.NewStore(s.cfg.ProfileDir)
	if err := profiles.Load(); err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	// The CLI may have opened the audit log already via its global flag.
	// When the server config names a different file, fan events out to
	// both so each log carries a complete chain for this session.
	if s.cfg.AuditLog != "" {
		switch {
		case !audit.Enabled():
			if err := audit.InitFile(s.cfg.AuditLog); err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}
			defer func() { _ = audit.Close() }()
		case audit.FilePath() != s.cfg.AuditLog:
			w, err := audit.NewFileWriter(s.cfg.AuditLog)
			if err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}
			if err := audit.Attach(w); err != nil {
				return err
			}
		}
	}

	routerCfg := &router.Config{
		Version:  s.version,
		Keys:     keys,
		Profiles: profiles,
	}

	s.srv = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      router.New(routerCfg),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	if err := audit.LogServeStarted(s.cfg.Address()); err != nil {
		return err
	}

	s.printStartupInfo(keys.IDs(), profiles.List())

	return s.run()
}

// run starts the listener and handles graceful shutdown.
func (s *Server) run() error {
	errChan := make(chan error, 1)

	go func() {
		if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
			errChan <- s.srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			errChan <- s.srv.ListenAndServe()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
		return s.shutdown()
	}

	return nil
}

// shutdown gracefully shuts down the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}

// printStartupInfo prints server startup information.
func (s *Server) printStartupInfo(keyIDs, profileNames []string) {
	fmt.Println()
	fmt.Println("JWT API Server")
	fmt.Println("==============")
	fmt.Printf("  Version:  %s\n", s.version)
	fmt.Printf("  Address:  http://%s\n", s.cfg.Address())
	if s.cfg.TLSCert != "" {
		fmt.Println("  TLS:      enabled")
	}
	if s.cfg.AuditLog != "" {
		fmt.Printf("  Audit:    %s\n", s.cfg.AuditLog)
	}
	fmt.Println()
	fmt.Println("Keys:")
	for _, id := range keyIDs {
		fmt.Printf("  - %s\n", id)
	}
	fmt.Println()
	fmt.Println("Profiles:")
	for _, name := range profileNames {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /ready")
	fmt.Println("  GET  /.well-known/jwks.json")
	fmt.Println("  POST /api/v1/token/sign")
	fmt.Println("  POST /api/v1/token/verify")
	fmt.Println("  POST /api/v1/token/decode")
	fmt.Println("  GET  /api/v1/profiles")
	fmt.Println()
	fmt.Println("Use Ctrl+C to stop")
	fmt.Println()
}
