package cwt

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

// CWT claim keys (RFC 8392).
const (
	ClaimIss int64 = 1 // Issuer
	ClaimSub int64 = 2 // Subject
	ClaimAud int64 = 3 // Audience
	ClaimExp int64 = 4 // Expiration Time
	ClaimNbf int64 = 5 // Not Before
	ClaimIat int64 = 6 // Issued At
	ClaimCti int64 = 7 // CWT ID
)

// Claims represents CWT claims (RFC 8392). Standard claims use integer
// keys 1-7; custom claims use string keys, matching their JOSE names.
type Claims struct {
	Issuer     string    // iss (1)
	Subject    string    // sub (2)
	Audience   string    // aud (3)
	Expiration time.Time // exp (4) - Unix epoch seconds
	NotBefore  time.Time // nbf (5) - Unix epoch seconds
	IssuedAt   time.Time // iat (6) - Unix epoch seconds
	CWTID      []byte    // cti (7) - unique identifier

	Custom map[string]any
}

// FromJOSE converts a JOSE claims map to its CWT representation.
// The jti string becomes the cti byte string.
func FromJOSE(claims jose.Claims) *Claims {
	out := &Claims{Custom: make(map[string]any)}
	for name, value := range claims {
		switch name {
		case jose.ClaimIssuer:
			out.Issuer, _ = value.(string)
		case jose.ClaimSubject:
			out.Subject, _ = value.(string)
		case jose.ClaimAudience:
			if s, ok := value.(string); ok {
				out.Audience = s
			}
		case jose.ClaimExpiresAt:
			out.Expiration, _ = claims.ExpiresAt()
		case jose.ClaimNotBefore:
			out.NotBefore, _ = claims.NotBefore()
		case jose.ClaimIssuedAt:
			out.IssuedAt, _ = claims.IssuedAt()
		case jose.ClaimID:
			if s, ok := value.(string); ok {
				out.CWTID = []byte(s)
			}
		default:
			out.Custom[name] = value
		}
	}
	return out
}

// ToJOSE converts the CWT claims back to a JOSE claims map.
func (c *Claims) ToJOSE() jose.Claims {
	claims := jose.Claims{}
	if c.Issuer != "" {
		claims.SetIssuer(c.Issuer)
	}
	if c.Subject != "" {
		claims.SetSubject(c.Subject)
	}
	if c.Audience != "" {
		claims.SetAudience(c.Audience)
	}
	if !c.Expiration.IsZero() {
		claims.SetExpiresAt(c.Expiration)
	}
	if !c.NotBefore.IsZero() {
		claims.SetNotBefore(c.NotBefore)
	}
	if !c.IssuedAt.IsZero() {
		claims.SetIssuedAt(c.IssuedAt)
	}
	if len(c.CWTID) > 0 {
		claims.SetID(string(c.CWTID))
	}
	for name, value := range c.Custom {
		claims[name] = value
	}
	return claims
}

// MarshalCBOR encodes the claims as a CBOR map. Standard claims use
// integer keys; custom claims keep their string keys. Canonical encoding
// keeps the output deterministic.
func (c *Claims) MarshalCBOR() ([]byte, error) {
	m := make(map[any]any)

	if c.Issuer != "" {
		m[ClaimIss] = c.Issuer
	}
	if c.Subject != "" {
		m[ClaimSub] = c.Subject
	}
	if c.Audience != "" {
		m[ClaimAud] = c.Audience
	}
	if !c.Expiration.IsZero() {
		m[ClaimExp] = c.Expiration.Unix()
	}
	if !c.NotBefore.IsZero() {
		m[ClaimNbf] = c.NotBefore.Unix()
	}
	if !c.IssuedAt.IsZero() {
		m[ClaimIat] = c.IssuedAt.Unix()
	}
	if len(c.CWTID) > 0 {
		m[ClaimCti] = c.CWTID
	}
	for k, v := range c.Custom {
		m[k] = v
	}

	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	return em.Marshal(m)
}

// UnmarshalCBOR decodes CBOR claims into the Claims struct.
func (c *Claims) UnmarshalCBOR(data []byte) error {
	var m map[any]any
	if err := cbor.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to unmarshal CBOR claims: %w", err)
	}

	c.Custom = make(map[string]any)

	for key, v := range m {
		ik, isInt := intKey(key)
		if !isInt {
			if sk, ok := key.(string); ok {
				c.Custom[sk] = v
			}
			continue
		}
		switch ik {
		case ClaimIss:
			if s, ok := v.(string); ok {
				c.Issuer = s
			}
		case ClaimSub:
			if s, ok := v.(string); ok {
				c.Subject = s
			}
		case ClaimAud:
			if s, ok := v.(string); ok {
				c.Audience = s
			}
		case ClaimExp:
			c.Expiration = timeFromCBOR(v)
		case ClaimNbf:
			c.NotBefore = timeFromCBOR(v)
		case ClaimIat:
			c.IssuedAt = timeFromCBOR(v)
		case ClaimCti:
			if b, ok := v.([]byte); ok {
				c.CWTID = b
			}
		}
	}

	return nil
}

func intKey(key any) (int64, bool) {
	switch k := key.(type) {
	case int64:
		return k, true
	case uint64:
		return int64(k), true
	default:
		return 0, false
	}
}

// timeFromCBOR converts a CBOR numeric value to time.Time (Unix epoch).
func timeFromCBOR(v any) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0).UTC()
	case uint64:
		return time.Unix(int64(t), 0).UTC()
	case float64:
		return time.Unix(int64(t), 0).UTC()
	default:
		return time.Time{}
	}
}
