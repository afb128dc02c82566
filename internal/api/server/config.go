// Package server provides HTTP server configuration and lifecycle management.
package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/EdibuLLC/JSONWebToken/internal/api/service"
)

// Config holds the server configuration.
type Config struct {
	// Port is the HTTP port.
	Port int

	// Host is the address to bind to (default: "").
	Host string

	// ProfileDir is an optional directory of signing profiles that
	// shadow the builtin ones.
	ProfileDir string

	// AuditLog is the path of the audit log file. Empty disables audit.
	AuditLog string

	// Keys lists the signing keys to load.
	Keys []service.KeyConfig

	// TLS configuration (optional)
	TLSCert string
	TLSKey  string

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8440,
		Host:            "",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Address returns the full listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// configYAML is the on-disk representation with string durations.
type configYAML struct {
	Host       string              `yaml:"host,omitempty"`
	Port       int                 `yaml:"port,omitempty"`
	ProfileDir string              `yaml:"profile_dir,omitempty"`
	AuditLog   string              `yaml:"audit_log,omitempty"`
	TLSCert    string              `yaml:"tls_cert,omitempty"`
	TLSKey     string              `yaml:"tls_key,omitempty"`
	Keys       []service.KeyConfig `yaml:"keys"`

	ReadTimeout     string `yaml:"read_timeout,omitempty"`
	WriteTimeout    string `yaml:"write_timeout,omitempty"`
	IdleTimeout     string `yaml:"idle_timeout,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// LoadConfig reads a YAML server configuration, applies it on top of the
// defaults, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var cy configYAML
		if err := yaml.Unmarshal(data, &cy); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		if cy.Host != "" {
			cfg.Host = cy.Host
		}
		if cy.Port != 0 {
			cfg.Port = cy.Port
		}
		cfg.ProfileDir = cy.ProfileDir
		cfg.AuditLog = cy.AuditLog
		cfg.TLSCert = cy.TLSCert
		cfg.TLSKey = cy.TLSKey
		cfg.Keys = cy.Keys

		for _, d := range []struct {
			raw string
			dst *time.Duration
		}{
			{cy.ReadTimeout, &cfg.ReadTimeout},
			{cy.WriteTimeout, &cfg.WriteTimeout},
			{cy.IdleTimeout, &cfg.IdleTimeout},
			{cy.ShutdownTimeout, &cfg.ShutdownTimeout},
		} {
			if d.raw == "" {
				continue
			}
			parsed, err := time.ParseDuration(d.raw)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", d.raw, err)
			}
			*d.dst = parsed
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() {
	if host := os.Getenv("JWT_API_HOST"); host != "" {
		c.Host = host
	}
	if port := os.Getenv("JWT_API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if auditLog := os.Getenv("JWT_AUDIT_LOG"); auditLog != "" {
		c.AuditLog = auditLog
	}
}
