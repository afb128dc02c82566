// Package profile provides declarative signing profiles for tokens.
//
// A profile defines a complete token issuance policy: the signature
// algorithm, the signing key reference, claim templates, and lifetime.
// Claim templates use {{ variable }} placeholders that are resolved at
// signing time against the profile's declared variables.
package profile

import (
	"fmt"
	"time"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// Profile defines a token type.
// Design: 1 profile = 1 token shape.
type Profile struct {
	// Name is the unique identifier for this profile.
	Name string `yaml:"name" json:"name"`

	// Description provides a human-readable description.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Algorithm is the JOSE signature algorithm (e.g. RS256, ES256, HS256).
	Algorithm crypto.Algorithm `yaml:"algorithm" json:"algorithm"`

	// KeyID references the signing key in the server key set. It is also
	// emitted as the kid header of issued tokens.
	KeyID string `yaml:"key,omitempty" json:"key,omitempty"`

	// TTL is the token lifetime. exp is set to iat + TTL when non-zero.
	TTL time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`

	// NotBeforeSkew backdates nbf to tolerate clock drift between the
	// issuer and verifiers.
	NotBeforeSkew time.Duration `yaml:"not_before_skew,omitempty" json:"not_before_skew,omitempty"`

	// AutoID issues a fresh jti for every token.
	AutoID bool `yaml:"auto_id,omitempty" json:"auto_id,omitempty"`

	// Claims contains claim templates (e.g. "sub": "{{ subject }}",
	// "iss": "https://auth.example.com"). Template variables are resolved
	// using the profile's variables; static values are used as-is.
	Claims map[string]string `yaml:"claims,omitempty" json:"claims,omitempty"`

	// Variables defines declarative input variables for the profile.
	Variables map[string]*Variable `yaml:"variables,omitempty" json:"variables,omitempty"`
}

// Validate checks the profile for internal consistency.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if !p.Algorithm.IsValid() {
		return fmt.Errorf("profile %s: unknown algorithm %q", p.Name, p.Algorithm)
	}
	if p.TTL < 0 {
		return fmt.Errorf("profile %s: ttl must not be negative", p.Name)
	}
	if p.NotBeforeSkew < 0 {
		return fmt.Errorf("profile %s: not_before_skew must not be negative", p.Name)
	}
	for name, v := range p.Variables {
		if v == nil {
			return fmt.Errorf("profile %s: variable %s has no definition", p.Name, name)
		}
		if v.Type == "" {
			return fmt.Errorf("profile %s: variable %s has no type", p.Name, name)
		}
	}
	return nil
}
