// This file exposes JWS token operations from internal/jose.
package jwt

import (
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

// Re-export JOSE types
type (
	// Token is a decoded JWS in compact serialization.
	Token = jose.Token

	// Header is the JOSE protected header.
	Header = jose.Header

	// Claims is a JWT claims map.
	Claims = jose.Claims

	// Validator checks a claims set against expectations.
	Validator = jose.Validator

	// JWK is a published verification key.
	JWK = jose.JWK

	// JWKS is a JSON Web Key Set.
	JWKS = jose.JWKS
)

// Sentinel errors surfaced by token operations.
var (
	ErrMalformed            = jose.ErrMalformed
	ErrUnsupportedAlgorithm = jose.ErrUnsupportedAlgorithm
	ErrSignatureInvalid     = jose.ErrSignatureInvalid
	ErrTokenExpired         = jose.ErrTokenExpired
	ErrTokenNotYetValid     = jose.ErrTokenNotYetValid
	ErrIssuerMismatch       = jose.ErrIssuerMismatch
	ErrAudienceMismatch     = jose.ErrAudienceMismatch
	ErrSubjectMismatch      = jose.ErrSubjectMismatch
)

// NewToken creates an unsigned token carrying the given claims.
func NewToken(claims Claims) *Token {
	return jose.New(claims)
}

// NewID returns a random token identifier for the jti claim.
func NewID() string {
	return jose.NewID()
}

// Decode parses a compact serialization without verifying it.
func Decode(s string) (*Token, error) {
	return jose.Decode(s)
}

// Verify parses a compact serialization and checks its signature
// against the given verifiers. The first verifier configured for the
// token's algorithm decides.
func Verify(s string, verifiers ...Verifier) (*Token, error) {
	return jose.Verify(s, verifiers...)
}

// NewJWK builds the published form of a verification key.
func NewJWK(pub any, kid string, alg Algorithm) (JWK, error) {
	return jose.NewJWK(pub, kid, alg)
}
