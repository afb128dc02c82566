package profile

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// VariableValidator validates caller-provided values against variable
// constraints. Regex patterns are compiled once when the validator is
// created, not during validation.
type VariableValidator struct {
	variables map[string]*Variable
	compiled  map[string]*regexp.Regexp
}

// NewVariableValidator creates a new validator for the given variables.
func NewVariableValidator(vars map[string]*Variable) (*VariableValidator, error) {
	v := &VariableValidator{
		variables: vars,
		compiled:  make(map[string]*regexp.Regexp),
	}

	for name, variable := range vars {
		if variable.Pattern != "" {
			re, err := regexp.Compile(variable.Pattern)
			if err != nil {
				return nil, fmt.Errorf("variable %s: invalid pattern %q: %w", name, variable.Pattern, err)
			}
			v.compiled[name] = re
		}
	}

	return v, nil
}

// Validate validates a single variable value.
func (v *VariableValidator) Validate(name string, value any) error {
	variable, ok := v.variables[name]
	if !ok {
		return fmt.Errorf("unknown variable: %s", name)
	}

	if value == nil {
		if variable.Required && !variable.HasDefault() {
			return fmt.Errorf("%s: required variable not provided", name)
		}
		return nil
	}

	switch variable.Type {
	case VarTypeString:
		return v.validateString(name, variable, value)
	case VarTypeInteger:
		return v.validateInteger(name, variable, value)
	case VarTypeBoolean:
		return v.validateBoolean(name, value)
	case VarTypeList:
		return v.validateList(name, variable, value)
	case VarTypeDNSName:
		return v.validateDNSName(name, variable, value)
	default:
		return fmt.Errorf("%s: unknown variable type: %s", name, variable.Type)
	}
}

// ValidateAll validates all provided values and checks for required
// variables. Returns the first validation error encountered.
func (v *VariableValidator) ValidateAll(values VariableValues) error {
	for name, value := range values {
		if err := v.Validate(name, value); err != nil {
			return err
		}
	}

	for name, variable := range v.variables {
		if variable.Required && !variable.HasDefault() {
			if _, ok := values[name]; !ok {
				return fmt.Errorf("required variable %q not provided", name)
			}
		}
	}

	return nil
}

// MergeWithDefaults merges caller-provided values with default values.
// Returns a new map with all variables resolved.
func (v *VariableValidator) MergeWithDefaults(values VariableValues) VariableValues {
	result := make(VariableValues, len(v.variables))

	for name, variable := range v.variables {
		if variable.HasDefault() {
			result[name] = variable.Default
		}
	}
	for name, value := range values {
		result[name] = value
	}

	return result
}

// RequiredVariables returns the names of all required variables.
func (v *VariableValidator) RequiredVariables() []string {
	var required []string
	for name, variable := range v.variables {
		if variable.IsRequired() {
			required = append(required, name)
		}
	}
	return required
}

func (v *VariableValidator) validateString(name string, variable *Variable, value any) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s: expected string, got %T", name, value)
	}

	if re, ok := v.compiled[name]; ok {
		if !re.MatchString(str) {
			return fmt.Errorf("%s: value %q does not match pattern %q", name, str, variable.Pattern)
		}
	}

	if len(variable.Enum) > 0 {
		valid := false
		for _, e := range variable.Enum {
			if str == e {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("%s: value %q not in allowed values %v", name, str, variable.Enum)
		}
	}

	if variable.MinLength > 0 && len(str) < variable.MinLength {
		return fmt.Errorf("%s: length %d below minimum %d", name, len(str), variable.MinLength)
	}
	if variable.MaxLength > 0 && len(str) > variable.MaxLength {
		return fmt.Errorf("%s: length %d exceeds maximum %d", name, len(str), variable.MaxLength)
	}

	return nil
}

func (v *VariableValidator) validateInteger(name string, variable *Variable, value any) error {
	var intVal int

	switch i := value.(type) {
	case int:
		intVal = i
	case float64:
		intVal = int(i)
	default:
		return fmt.Errorf("%s: expected integer, got %T", name, value)
	}

	if variable.Min != nil && intVal < *variable.Min {
		return fmt.Errorf("%s: value %d below minimum %d", name, intVal, *variable.Min)
	}
	if variable.Max != nil && intVal > *variable.Max {
		return fmt.Errorf("%s: value %d exceeds maximum %d", name, intVal, *variable.Max)
	}

	return nil
}

func (v *VariableValidator) validateBoolean(name string, value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%s: expected boolean, got %T", name, value)
	}
	return nil
}

func (v *VariableValidator) validateList(name string, variable *Variable, value any) error {
	list, err := toStringList(name, value)
	if err != nil {
		return err
	}

	c := variable.Constraints
	if c == nil {
		return nil
	}

	if c.MinItems > 0 && len(list) < c.MinItems {
		return fmt.Errorf("%s: need at least %d items, got %d", name, c.MinItems, len(list))
	}
	if c.MaxItems > 0 && len(list) > c.MaxItems {
		return fmt.Errorf("%s: max %d items allowed, got %d", name, c.MaxItems, len(list))
	}

	for _, item := range list {
		if len(c.AllowedSuffixes) > 0 {
			valid := false
			for _, suffix := range c.AllowedSuffixes {
				if strings.HasSuffix(item, suffix) {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("%s: %q does not match allowed suffixes %v", name, item, c.AllowedSuffixes)
			}
		}
		for _, prefix := range c.DeniedPrefixes {
			if strings.HasPrefix(item, prefix) {
				return fmt.Errorf("%s: %q matches denied prefix %q", name, item, prefix)
			}
		}
	}

	return nil
}

func (v *VariableValidator) validateDNSName(name string, variable *Variable, value any) error {
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("%s: expected string, got %T", name, value)
	}

	if err := ValidateDNSNameWithOptions(str, variable.AllowSingleLabel); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := ValidateWildcard(str, variable.Wildcard); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	// String constraints (pattern, enum, length) also apply, against the
	// normalized form.
	return v.validateString(name, variable, NormalizeDNSName(str))
}

// toStringList converts various value types to a string slice.
func toStringList(name string, value any) ([]string, error) {
	switch l := value.(type) {
	case []string:
		return l, nil
	case string:
		return []string{l}, nil
	case []any:
		list := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: list item is not a string: %T", name, item)
			}
			list = append(list, s)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%s: expected list, got %T", name, value)
	}
}

// NormalizeDNSName lowercases the name (RFC 4343) and strips a trailing
// dot (FQDN absolute form).
func NormalizeDNSName(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}

// ValidateDNSNameWithOptions validates a DNS name per RFC 1035/1123.
// If allowSingleLabel is true, single-label names like "localhost" are
// accepted.
func ValidateDNSNameWithOptions(name string, allowSingleLabel bool) error {
	if name == "" {
		return fmt.Errorf("DNS name cannot be empty")
	}

	name = NormalizeDNSName(name)

	// RFC 1035: total DNS name length limit
	if len(name) > 253 {
		return fmt.Errorf("DNS name too long: %d > 253 characters", len(name))
	}

	labels := strings.Split(name, ".")

	minLabels := 2
	if allowSingleLabel {
		minLabels = 1
	}
	if len(labels) < minLabels {
		return fmt.Errorf("DNS name must have at least %d labels: %q", minLabels, name)
	}

	for i, label := range labels {
		if label == "" {
			return fmt.Errorf("empty label in DNS name (double dot or leading/trailing dot)")
		}
		if len(label) > 63 {
			return fmt.Errorf("label too long: %q (%d > 63 characters)", label, len(label))
		}
		if label == "*" {
			if i != 0 {
				return fmt.Errorf("wildcard (*) must be leftmost label")
			}
			continue
		}
		if !isValidDNSLabel(label) {
			return fmt.Errorf("invalid DNS label %q: must contain only alphanumeric characters and hyphens, and not start or end with a hyphen", label)
		}
	}

	return nil
}

// isValidDNSLabel checks a DNS label per RFC 1123.
func isValidDNSLabel(label string) bool {
	if len(label) == 0 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, c := range label {
		isLower := c >= 'a' && c <= 'z'
		isUpper := c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isLower && !isUpper && !isDigit && c != '-' {
			return false
		}
	}
	return true
}

// ValidateWildcard validates a DNS name against a wildcard policy
// (RFC 6125). If policy is nil, wildcards are not allowed.
func ValidateWildcard(name string, policy *WildcardPolicy) error {
	name = NormalizeDNSName(name)
	labels := strings.Split(name, ".")

	wildcardPos := -1
	for i, label := range labels {
		if label == "*" {
			if wildcardPos >= 0 {
				return fmt.Errorf("multiple wildcards not allowed: %q", name)
			}
			wildcardPos = i
		}
	}
	if wildcardPos < 0 {
		return nil
	}

	if policy == nil || !policy.Allowed {
		return fmt.Errorf("wildcards not allowed: %q", name)
	}
	if wildcardPos != 0 {
		return fmt.Errorf("wildcard must be leftmost label: %q", name)
	}

	// Minimum *.domain.tld, otherwise the wildcard is too broad.
	if len(labels) < 3 {
		return fmt.Errorf("wildcard requires at least 3 labels (*.domain.tld): %q has only %d", name, len(labels))
	}

	if policy.ForbidPublicSuffix {
		baseDomain := strings.Join(labels[1:], ".")
		suffix, icann := publicsuffix.PublicSuffix(baseDomain)
		if icann && suffix == baseDomain {
			return fmt.Errorf("wildcard on public suffix not allowed: %q (public suffix: %q)", name, suffix)
		}
	}

	return nil
}
