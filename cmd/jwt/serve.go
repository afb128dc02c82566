package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/api/server"
)

// Serve command flags
var (
	serveConfig     string
	servePort       int
	serveHost       string
	serveProfileDir string
	serveTLSCert    string
	serveTLSKey     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the token signing REST API",
	Long: `Start the REST API for token signing and verification.

Endpoints:
  POST /api/v1/token/sign      Sign a token using a profile
  POST /api/v1/token/verify    Verify a token against the key set
  POST /api/v1/token/decode    Decode without verification
  GET  /api/v1/profiles        List issuance profiles
  GET  /.well-known/jwks.json  Published verification keys
  GET  /health, /ready         Health probes

Signing keys and profiles come from the YAML configuration file.

Environment variables:
  JWT_API_HOST   Host to bind to
  JWT_API_PORT   Port to listen on
  JWT_AUDIT_LOG  Path to audit log file

Examples:
  # Start with a configuration file
  jwt serve --config server.yaml

  # Override the listen port
  jwt serve --config server.yaml --port 9440

  # Start with TLS
  jwt serve --config server.yaml --tls-cert server.crt --tls-key server.key`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Server configuration file (YAML, required)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: 8440)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: all interfaces)")
	serveCmd.Flags().StringVar(&serveProfileDir, "profile-dir", "", "Directory with custom profiles")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS private key file")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := server.LoadConfig(serveConfig)
	if err != nil {
		return err
	}

	// Flags override file and environment.
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if serveProfileDir != "" {
		cfg.ProfileDir = serveProfileDir
	}
	if serveTLSCert != "" {
		cfg.TLSCert = serveTLSCert
	}
	if serveTLSKey != "" {
		cfg.TLSKey = serveTLSKey
	}
	if auditLogPath != "" {
		cfg.AuditLog = auditLogPath
	}

	if len(cfg.Keys) == 0 {
		return fmt.Errorf("no signing keys configured")
	}

	return server.New(cfg, version).Start()
}
