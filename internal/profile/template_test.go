package profile

import (
	"strings"
	"testing"
	"time"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// =============================================================================
// Template Rendering Tests
// =============================================================================

func sessionProfile() *Profile {
	return &Profile{
		Name:      "session",
		Algorithm: crypto.AlgES256,
		TTL:       time.Hour,
		AutoID:    true,
		Claims: map[string]string{
			"iss":   "https://auth.example.com",
			"sub":   "{{ subject }}",
			"aud":   "{{ audience }}",
			"scope": "{{ scopes }}",
			"desc":  "session for {{ subject }} at {{ audience }}",
		},
		Variables: map[string]*Variable{
			"subject":  {Type: VarTypeString, Required: true},
			"audience": {Type: VarTypeDNSName, Default: "api.example.com"},
			"scopes":   {Type: VarTypeList, Default: []string{"read"}},
		},
	}
}

func TestRender(t *testing.T) {
	engine, err := NewTemplateEngine(sessionProfile())
	if err != nil {
		t.Fatalf("NewTemplateEngine() error = %v", err)
	}

	claims, err := engine.Render(VariableValues{
		"subject": "alice",
		"scopes":  []string{"read", "write"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if claims.Issuer() != "https://auth.example.com" {
		t.Errorf("iss = %q", claims.Issuer())
	}
	if claims.Subject() != "alice" {
		t.Errorf("sub = %q, want alice", claims.Subject())
	}
	if !claims.HasAudience("api.example.com") {
		t.Errorf("aud = %v, default not applied", claims.Audience())
	}

	// A whole-string placeholder keeps the native list type.
	scopes, ok := claims["scope"].([]string)
	if !ok || len(scopes) != 2 {
		t.Errorf("scope = %v (%T), want a 2-item list", claims["scope"], claims["scope"])
	}

	// Mixed templates render as strings.
	if desc, _ := claims["desc"].(string); desc != "session for alice at api.example.com" {
		t.Errorf("desc = %q", desc)
	}
}

func TestRender_TimePolicy(t *testing.T) {
	engine, err := NewTemplateEngine(sessionProfile())
	if err != nil {
		t.Fatalf("NewTemplateEngine() error = %v", err)
	}

	before := time.Now().Add(-time.Second)
	claims, err := engine.Render(VariableValues{"subject": "alice"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	after := time.Now().Add(time.Second)

	iat, ok := claims.IssuedAt()
	if !ok || iat.Before(before) || iat.After(after) {
		t.Errorf("iat = %v, want about now", iat)
	}
	exp, ok := claims.ExpiresAt()
	if !ok {
		t.Fatal("exp not set despite TTL")
	}
	if d := exp.Sub(iat); d != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", d)
	}
	if claims.ID() == "" {
		t.Error("jti not set despite auto_id")
	}
}

func TestRender_Failures(t *testing.T) {
	tests := []struct {
		name    string
		values  VariableValues
		errPart string
	}{
		{"missing required", VariableValues{}, "required"},
		{"constraint violation", VariableValues{
			"subject":  "alice",
			"audience": "not a dns name!",
		}, "audience"},
	}

	engine, err := NewTemplateEngine(sessionProfile())
	if err != nil {
		t.Fatalf("NewTemplateEngine() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Render(tt.values)
			if err == nil {
				t.Fatal("Render() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestRender_UndefinedVariable(t *testing.T) {
	p := &Profile{
		Name:      "broken",
		Algorithm: crypto.AlgHS256,
		Claims:    map[string]string{"sub": "{{ nobody }}"},
	}
	engine, err := NewTemplateEngine(p)
	if err != nil {
		t.Fatalf("NewTemplateEngine() error = %v", err)
	}

	if _, err := engine.Render(VariableValues{}); err == nil {
		t.Error("Render() resolved an undeclared variable")
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"valid", Profile{Name: "p", Algorithm: crypto.AlgRS256}, false},
		{"no name", Profile{Algorithm: crypto.AlgRS256}, true},
		{"bad algorithm", Profile{Name: "p", Algorithm: "XX999"}, true},
		{"negative ttl", Profile{Name: "p", Algorithm: crypto.AlgRS256, TTL: -time.Hour}, true},
		{"variable without type", Profile{
			Name:      "p",
			Algorithm: crypto.AlgRS256,
			Variables: map[string]*Variable{"x": {}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
