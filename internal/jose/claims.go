package jose

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Registered claim names (RFC 7519, section 4.1).
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
)

// Claims is the JWT claims set. It is map-backed so private claims pass
// through untouched; the registered claims get typed accessors.
type Claims map[string]any

// NewID generates a unique token identifier (jti).
func NewID() string {
	return uuid.NewString()
}

// Issuer returns the "iss" claim, or "" if absent.
func (c Claims) Issuer() string {
	return c.str(ClaimIssuer)
}

// Subject returns the "sub" claim, or "" if absent.
func (c Claims) Subject() string {
	return c.str(ClaimSubject)
}

// ID returns the "jti" claim, or "" if absent.
func (c Claims) ID() string {
	return c.str(ClaimID)
}

// Audience returns the "aud" claim. Both the single-string and the
// string-array JSON forms are accepted.
func (c Claims) Audience() []string {
	switch v := c[ClaimAudience].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		var out []string
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// HasAudience reports whether aud contains the given value.
func (c Claims) HasAudience(aud string) bool {
	for _, a := range c.Audience() {
		if a == aud {
			return true
		}
	}
	return false
}

// ExpiresAt returns the "exp" claim as a time, and whether it is set.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.numericDate(ClaimExpiresAt)
}

// NotBefore returns the "nbf" claim as a time, and whether it is set.
func (c Claims) NotBefore() (time.Time, bool) {
	return c.numericDate(ClaimNotBefore)
}

// IssuedAt returns the "iat" claim as a time, and whether it is set.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.numericDate(ClaimIssuedAt)
}

// SetIssuer sets the "iss" claim.
func (c Claims) SetIssuer(iss string) { c[ClaimIssuer] = iss }

// SetSubject sets the "sub" claim.
func (c Claims) SetSubject(sub string) { c[ClaimSubject] = sub }

// SetAudience sets the "aud" claim. A single value is stored in the
// compact string form.
func (c Claims) SetAudience(aud ...string) {
	if len(aud) == 1 {
		c[ClaimAudience] = aud[0]
		return
	}
	c[ClaimAudience] = aud
}

// SetExpiresAt sets the "exp" claim as a NumericDate.
func (c Claims) SetExpiresAt(t time.Time) { c[ClaimExpiresAt] = t.Unix() }

// SetNotBefore sets the "nbf" claim as a NumericDate.
func (c Claims) SetNotBefore(t time.Time) { c[ClaimNotBefore] = t.Unix() }

// SetIssuedAt sets the "iat" claim as a NumericDate.
func (c Claims) SetIssuedAt(t time.Time) { c[ClaimIssuedAt] = t.Unix() }

// SetID sets the "jti" claim.
func (c Claims) SetID(id string) { c[ClaimID] = id }

func (c Claims) str(name string) string {
	if s, ok := c[name].(string); ok {
		return s
	}
	return ""
}

// numericDate reads a NumericDate claim. JSON numbers arrive as float64
// after unmarshaling; int64 and json.Number appear when claims are built
// in process.
func (c Claims) numericDate(name string) (time.Time, bool) {
	switch v := c[name].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case int:
		return time.Unix(int64(v), 0), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return time.Unix(n, 0), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
