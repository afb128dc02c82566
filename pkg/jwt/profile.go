// This file exposes issuance profiles from internal/profile.
package jwt

import (
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

// Re-export profile types
type (
	// Profile describes how tokens of one kind are issued.
	Profile = profile.Profile

	// ProfileStore holds built-in and custom profiles.
	ProfileStore = profile.Store

	// Variable describes one user-supplied profile input.
	Variable = profile.Variable

	// VariableValues maps variable names to caller-provided values.
	VariableValues = profile.VariableValues

	// TemplateEngine renders a profile's claim templates.
	TemplateEngine = profile.TemplateEngine
)

// NewProfileStore creates a store reading custom profiles from dir.
// An empty dir serves the built-in profiles only.
func NewProfileStore(dir string) *ProfileStore {
	return profile.NewStore(dir)
}

// BuiltinProfiles returns the profiles compiled into the binary.
func BuiltinProfiles() (map[string]*Profile, error) {
	return profile.BuiltinProfiles()
}

// LoadProfileFromFile parses and validates a profile YAML file.
func LoadProfileFromFile(path string) (*Profile, error) {
	return profile.LoadProfileFromFile(path)
}

// NewTemplateEngine prepares a profile for rendering.
func NewTemplateEngine(p *Profile) (*TemplateEngine, error) {
	return profile.NewTemplateEngine(p)
}
