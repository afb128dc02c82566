package dto

// ProfileSummary describes a signing profile in list responses.
type ProfileSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Algorithm   string `json:"algorithm"`
	KeyID       string `json:"key_id,omitempty"`
	TTL         string `json:"ttl,omitempty"`
}

// ProfileDetail describes a signing profile with its variables.
type ProfileDetail struct {
	ProfileSummary

	Claims    map[string]string          `json:"claims,omitempty"`
	Variables map[string]ProfileVariable `json:"variables,omitempty"`
}

// ProfileVariable describes a declared profile variable.
type ProfileVariable struct {
	Type        string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Default     any      `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ProfileListResponse lists available profiles.
type ProfileListResponse struct {
	Profiles []ProfileSummary `json:"profiles"`
}
