package profile

// VariableType defines the type of a profile variable.
type VariableType string

const (
	// VarTypeString is a string variable with optional pattern/enum validation.
	VarTypeString VariableType = "string"

	// VarTypeInteger is an integer variable with optional min/max validation.
	VarTypeInteger VariableType = "integer"

	// VarTypeBoolean is a boolean variable.
	VarTypeBoolean VariableType = "boolean"

	// VarTypeList is a list of strings with optional suffix/prefix constraints.
	VarTypeList VariableType = "list"

	// VarTypeDNSName is a single DNS name with built-in RFC 1035/1123 validation.
	// Supports optional wildcard policy (RFC 6125).
	VarTypeDNSName VariableType = "dns_name"
)

// WildcardPolicy defines constraints for wildcard DNS names (RFC 6125).
//
// Example YAML:
//
//	audience:
//	  type: dns_name
//	  wildcard:
//	    allowed: true              # Permit wildcards like *.example.com
//	    forbid_public_suffix: true # Block wildcards on public suffixes (*.co.uk)
type WildcardPolicy struct {
	// Allowed permits wildcard DNS names (e.g., *.example.com).
	// Default: false (wildcards rejected).
	Allowed bool `yaml:"allowed" json:"allowed"`

	// ForbidPublicSuffix blocks wildcards on public suffixes like *.co.uk.
	// Uses the Public Suffix List to detect effective TLDs.
	ForbidPublicSuffix bool `yaml:"forbid_public_suffix" json:"forbid_public_suffix"`
}

// Variable defines a profile variable with its type and constraints.
// Variables are declared in the YAML profile and referenced from claim
// templates.
//
// Example YAML:
//
//	variables:
//	  subject:
//	    type: string
//	    required: true
//	    pattern: "^[a-z0-9][a-z0-9.-]*$"
//	    description: "Account identifier"
//
//	  scopes:
//	    type: list
//	    default: [read]
//	    constraints:
//	      max_items: 10
type Variable struct {
	// Name is set from the YAML map key, not from YAML content.
	Name string `yaml:"-" json:"-"`

	// Type defines the variable type (string, integer, boolean, list, dns_name).
	Type VariableType `yaml:"type" json:"type"`

	// Required indicates if the variable must be provided by the caller.
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Default is the default value if not provided by the caller.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`

	// Description provides documentation for the variable.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Pattern is a regex pattern for string validation.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Enum is a list of allowed values for string variables.
	Enum []string `yaml:"enum,omitempty" json:"enum,omitempty"`

	// MinLength is the minimum string length.
	MinLength int `yaml:"minLength,omitempty" json:"minLength,omitempty"`

	// MaxLength is the maximum string length.
	MaxLength int `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`

	// Min is the minimum value for integer variables.
	Min *int `yaml:"min,omitempty" json:"min,omitempty"`

	// Max is the maximum value for integer variables.
	Max *int `yaml:"max,omitempty" json:"max,omitempty"`

	// Constraints defines constraints for list variables.
	Constraints *ListConstraints `yaml:"constraints,omitempty" json:"constraints,omitempty"`

	// Wildcard defines the wildcard policy for dns_name variables.
	// If nil, wildcards are rejected (RFC 6125 compliant default).
	Wildcard *WildcardPolicy `yaml:"wildcard,omitempty" json:"wildcard,omitempty"`

	// AllowSingleLabel permits single-label DNS names (e.g., "localhost").
	// Default: false (requires at least 2 labels like "example.com").
	AllowSingleLabel bool `yaml:"allow_single_label,omitempty" json:"allow_single_label,omitempty"`
}

// ListConstraints defines constraints for list variables.
type ListConstraints struct {
	// AllowedSuffixes requires each list item to end with one of these suffixes.
	AllowedSuffixes []string `yaml:"allowed_suffixes,omitempty" json:"allowed_suffixes,omitempty"`

	// DeniedPrefixes rejects list items starting with any of these prefixes.
	DeniedPrefixes []string `yaml:"denied_prefixes,omitempty" json:"denied_prefixes,omitempty"`

	// MinItems is the minimum number of list items.
	MinItems int `yaml:"min_items,omitempty" json:"min_items,omitempty"`

	// MaxItems is the maximum number of list items.
	MaxItems int `yaml:"max_items,omitempty" json:"max_items,omitempty"`
}

// HasDefault returns true if the variable has a default value.
func (v *Variable) HasDefault() bool {
	return v.Default != nil
}

// IsRequired returns true if the variable must be provided.
func (v *Variable) IsRequired() bool {
	return v.Required && !v.HasDefault()
}

// VariableValues holds caller-provided variable values.
type VariableValues map[string]any

// GetString returns a string value from the map.
func (vv VariableValues) GetString(name string) (string, bool) {
	v, ok := vv[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns an integer value from the map.
func (vv VariableValues) GetInt(name string) (int, bool) {
	v, ok := vv[name]
	if !ok {
		return 0, false
	}
	switch i := v.(type) {
	case int:
		return i, true
	case float64:
		return int(i), true
	}
	return 0, false
}

// GetBool returns a boolean value from the map.
func (vv VariableValues) GetBool(name string) (bool, bool) {
	v, ok := vv[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetStringList returns a string slice value from the map.
func (vv VariableValues) GetStringList(name string) ([]string, bool) {
	v, ok := vv[name]
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result, true
	}
	return nil, false
}

// SetString sets a string value in the map.
func (vv VariableValues) SetString(name, value string) {
	vv[name] = value
}
