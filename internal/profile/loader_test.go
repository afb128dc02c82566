package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// =============================================================================
// Profile Loading Tests
// =============================================================================

const deployProfileYAML = `
name: deploy
description: CI deployment tokens
algorithm: ES256
key: ci-signing
ttl: 15m
not_before_skew: 30s
auto_id: true
claims:
  iss: https://ci.example.com
  sub: "{{ pipeline }}"
variables:
  pipeline:
    type: string
    required: true
    pattern: "^[a-z0-9-]+$"
`

func TestLoadProfileFromBytes(t *testing.T) {
	p, err := LoadProfileFromBytes([]byte(deployProfileYAML))
	if err != nil {
		t.Fatalf("LoadProfileFromBytes() error = %v", err)
	}

	if p.Name != "deploy" {
		t.Errorf("name = %q, want deploy", p.Name)
	}
	if p.Algorithm != crypto.AlgES256 {
		t.Errorf("algorithm = %s, want ES256", p.Algorithm)
	}
	if p.KeyID != "ci-signing" {
		t.Errorf("key = %q, want ci-signing", p.KeyID)
	}
	if p.TTL != 15*time.Minute {
		t.Errorf("ttl = %v, want 15m", p.TTL)
	}
	if p.NotBeforeSkew != 30*time.Second {
		t.Errorf("not_before_skew = %v, want 30s", p.NotBeforeSkew)
	}
	if !p.AutoID {
		t.Error("auto_id not set")
	}
	v, ok := p.Variables["pipeline"]
	if !ok || v.Name != "pipeline" || !v.Required {
		t.Errorf("pipeline variable = %+v", v)
	}
}

func TestLoadProfileFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "{{{"},
		{"unknown algorithm", "name: p\nalgorithm: XX999\n"},
		{"missing algorithm", "name: p\n"},
		{"missing name", "algorithm: RS256\n"},
		{"bad ttl", "name: p\nalgorithm: RS256\nttl: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfileFromBytes([]byte(tt.yaml)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"15m", 15 * time.Minute, false},
		{"24h", 24 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"1d12h", 36 * time.Hour, false},
		{"", 0, true},
		{"soon", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Store Tests
// =============================================================================

func TestBuiltinProfiles(t *testing.T) {
	builtin, err := BuiltinProfiles()
	if err != nil {
		t.Fatalf("BuiltinProfiles() error = %v", err)
	}

	for _, name := range []string{
		"api-access", "service-account", "web-session", "federation", "internal-queue",
	} {
		if _, ok := builtin[name]; !ok {
			t.Errorf("builtin profile %q missing", name)
		}
	}
}

func TestStore_DirectoryShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()

	custom := `
name: api-access
algorithm: ES384
ttl: 5m
`
	if err := os.WriteFile(filepath.Join(dir, "api-access.yaml"), []byte(custom), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}

	store := NewStore(dir)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p, ok := store.Get("api-access")
	if !ok {
		t.Fatal("api-access not found")
	}
	if p.Algorithm != crypto.AlgES384 {
		t.Errorf("directory profile did not shadow builtin: algorithm = %s", p.Algorithm)
	}

	// Builtins without a local override stay visible.
	if _, ok := store.Get("web-session"); !ok {
		t.Error("builtin web-session lost after directory load")
	}
}

func TestStore_MissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v, want builtins only", err)
	}
	if len(store.List()) == 0 {
		t.Error("store is empty")
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore("")
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	names := store.List()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("List() not sorted: %v", names)
			break
		}
	}
}

func TestLoadProfilesFromDirectory_SkipsNonYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# docs"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "p.yaml"), []byte("name: p\nalgorithm: HS256\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	profiles, err := LoadProfilesFromDirectory(dir)
	if err != nil {
		t.Fatalf("LoadProfilesFromDirectory() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Errorf("loaded %d profiles, want 1", len(profiles))
	}
}
