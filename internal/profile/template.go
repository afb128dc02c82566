package profile

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

// templateVarRegex matches {{ variable_name }} patterns.
var templateVarRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// TemplateEngine renders profile claim templates with variable
// substitution. It validates caller-provided values against variable
// constraints before substituting {{ variable }} placeholders.
type TemplateEngine struct {
	profile   *Profile
	validator *VariableValidator
}

// NewTemplateEngine creates a new template engine for the given profile.
// Returns an error if the profile's variable constraints are invalid.
func NewTemplateEngine(profile *Profile) (*TemplateEngine, error) {
	vars := profile.Variables
	if vars == nil {
		vars = make(map[string]*Variable)
	}

	// Set variable names from map keys
	for name, v := range vars {
		v.Name = name
	}

	validator, err := NewVariableValidator(vars)
	if err != nil {
		return nil, fmt.Errorf("invalid variable constraints: %w", err)
	}

	return &TemplateEngine{
		profile:   profile,
		validator: validator,
	}, nil
}

// Render validates the values, substitutes the claim templates and
// applies the profile's time policy. The returned claims are ready for
// signing.
func (e *TemplateEngine) Render(userValues VariableValues) (jose.Claims, error) {
	values := e.validator.MergeWithDefaults(userValues)

	if err := e.validator.ValidateAll(values); err != nil {
		return nil, err
	}

	claims := jose.Claims{}
	for name, tmpl := range e.profile.Claims {
		resolved, err := resolveTemplate(tmpl, values)
		if err != nil {
			return nil, fmt.Errorf("claim %s: %w", name, err)
		}
		claims[name] = resolved
	}

	now := time.Now().UTC()
	claims.SetIssuedAt(now)
	if e.profile.TTL > 0 {
		claims.SetExpiresAt(now.Add(e.profile.TTL))
	}
	if e.profile.NotBeforeSkew > 0 {
		claims.SetNotBefore(now.Add(-e.profile.NotBeforeSkew))
	}
	if e.profile.AutoID {
		claims.SetID(jose.NewID())
	}

	return claims, nil
}

// Validator exposes the compiled variable validator.
func (e *TemplateEngine) Validator() *VariableValidator {
	return e.validator
}

// resolveTemplate substitutes {{ variable }} placeholders in a template
// string. A template consisting of a single placeholder resolves to the
// variable's native value, so list variables survive as lists.
func resolveTemplate(tmpl string, values VariableValues) (any, error) {
	// Whole-string placeholder keeps the native type.
	if m := templateVarRegex.FindStringSubmatch(tmpl); m != nil && strings.TrimSpace(tmpl) == m[0] {
		value, ok := values[m[1]]
		if !ok {
			return nil, fmt.Errorf("undefined variable %q", m[1])
		}
		return value, nil
	}

	var missing string
	resolved := templateVarRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := templateVarRegex.FindStringSubmatch(match)[1]
		value, ok := values[name]
		if !ok {
			missing = name
			return match
		}
		return fmt.Sprintf("%v", value)
	})
	if missing != "" {
		return nil, fmt.Errorf("undefined variable %q", missing)
	}
	return resolved, nil
}
