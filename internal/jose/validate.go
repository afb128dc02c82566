package jose

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for claims validation.
var (
	ErrTokenExpired     = errors.New("jose: token is expired")
	ErrTokenNotYetValid = errors.New("jose: token is not valid yet")
	ErrIssuerMismatch   = errors.New("jose: issuer mismatch")
	ErrAudienceMismatch = errors.New("jose: audience mismatch")
	ErrSubjectMismatch  = errors.New("jose: subject mismatch")
	ErrClaimMissing     = errors.New("jose: required claim missing")
)

// Validator checks a claims set against expectations. The zero value
// validates only the time-based claims with no leeway.
type Validator struct {
	// Leeway is added on both sides of exp/nbf comparisons to absorb
	// clock skew between issuer and consumer.
	Leeway time.Duration

	// ExpectedIssuer, if set, must equal the "iss" claim.
	ExpectedIssuer string

	// ExpectedAudience, if set, must be contained in the "aud" claim.
	ExpectedAudience string

	// ExpectedSubject, if set, must equal the "sub" claim.
	ExpectedSubject string

	// RequiredClaims lists claim names that must be present.
	RequiredClaims []string

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Validate checks the claims and returns the first failure found.
// Time-based claims are only checked when present; RFC 7519 makes all
// registered claims optional.
func (v *Validator) Validate(claims Claims) error {
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}

	if exp, ok := claims.ExpiresAt(); ok {
		if now.After(exp.Add(v.Leeway)) {
			return fmt.Errorf("%w: expired at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
		}
	}

	if nbf, ok := claims.NotBefore(); ok {
		if now.Add(v.Leeway).Before(nbf) {
			return fmt.Errorf("%w: valid from %s", ErrTokenNotYetValid, nbf.UTC().Format(time.RFC3339))
		}
	}

	if v.ExpectedIssuer != "" && claims.Issuer() != v.ExpectedIssuer {
		return fmt.Errorf("%w: got %q, want %q", ErrIssuerMismatch, claims.Issuer(), v.ExpectedIssuer)
	}

	if v.ExpectedAudience != "" && !claims.HasAudience(v.ExpectedAudience) {
		return fmt.Errorf("%w: %q not in %v", ErrAudienceMismatch, v.ExpectedAudience, claims.Audience())
	}

	if v.ExpectedSubject != "" && claims.Subject() != v.ExpectedSubject {
		return fmt.Errorf("%w: got %q, want %q", ErrSubjectMismatch, claims.Subject(), v.ExpectedSubject)
	}

	for _, name := range v.RequiredClaims {
		if _, ok := claims[name]; !ok {
			return fmt.Errorf("%w: %s", ErrClaimMissing, name)
		}
	}

	return nil
}
