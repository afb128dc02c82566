package dto

// TokenSignRequest asks the server to issue a token from a profile.
type TokenSignRequest struct {
	// Profile names the signing profile to use.
	Profile string `json:"profile"`

	// Variables supplies values for the profile's declared variables.
	Variables map[string]any `json:"variables,omitempty"`

	// Claims adds extra claims on top of the rendered profile claims.
	// Registered claims set by the profile cannot be overridden.
	Claims map[string]any `json:"claims,omitempty"`
}

// TokenSignResponse carries an issued token.
type TokenSignResponse struct {
	// Token is the compact JWS serialization.
	Token string `json:"token"`

	// TokenID is the jti claim, when one was issued.
	TokenID string `json:"token_id,omitempty"`

	// Algorithm is the signature algorithm used.
	Algorithm string `json:"algorithm"`

	// KeyID is the signing key identifier.
	KeyID string `json:"key_id,omitempty"`

	// ExpiresAt is the exp claim in RFC3339 format, when set.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// TokenVerifyRequest asks the server to verify a token.
type TokenVerifyRequest struct {
	// Token is the compact JWS serialization.
	Token string `json:"token"`

	// Issuer, when set, must match the iss claim.
	Issuer string `json:"issuer,omitempty"`

	// Audience, when set, must be present in the aud claim.
	Audience string `json:"audience,omitempty"`

	// Subject, when set, must match the sub claim.
	Subject string `json:"subject,omitempty"`
}

// TokenVerifyResponse reports the verification outcome.
type TokenVerifyResponse struct {
	// Valid is true only when the signature and all claim checks pass.
	Valid bool `json:"valid"`

	// Reason explains a failed verification.
	Reason string `json:"reason,omitempty"`

	// Algorithm is the algorithm declared in the token header.
	Algorithm string `json:"algorithm,omitempty"`

	// Claims is the decoded claims set (only populated when Valid).
	Claims map[string]any `json:"claims,omitempty"`
}

// TokenDecodeRequest asks the server to decode a token without verifying.
type TokenDecodeRequest struct {
	Token string `json:"token"`
}

// TokenDecodeResponse carries the decoded parts of a token.
// The signature is NOT checked; callers must not trust these values.
type TokenDecodeResponse struct {
	Header map[string]any `json:"header"`
	Claims map[string]any `json:"claims"`
}
