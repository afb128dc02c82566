// This file exposes CBOR Web Token operations from internal/cwt.
package jwt

import (
	"github.com/EdibuLLC/JSONWebToken/internal/cwt"
)

// Re-export CWT types
type (
	// CWTClaims represents CWT claims (RFC 8392).
	CWTClaims = cwt.Claims
)

// Sentinel errors surfaced by CWT operations.
var (
	ErrCWTMalformed        = cwt.ErrMalformed
	ErrCWTSignatureInvalid = cwt.ErrSignatureInvalid
	ErrCWTEd448            = cwt.ErrEd448
)

// CWTFromJOSE converts a JOSE claims map to its CWT representation.
func CWTFromJOSE(claims Claims) *CWTClaims {
	return cwt.FromJOSE(claims)
}

// SignCWT signs claims as a COSE_Sign1 message.
func SignCWT(claims *CWTClaims, signer Signer, kid string) ([]byte, error) {
	return cwt.Sign(claims, signer, kid)
}

// DecodeCWT parses a CWT without verifying it.
func DecodeCWT(data []byte) (*CWTClaims, Algorithm, error) {
	return cwt.Decode(data)
}

// VerifyCWT parses a CWT and checks its signature against the given
// verifiers.
func VerifyCWT(data []byte, verifiers ...Verifier) (*CWTClaims, error) {
	return cwt.Verify(data, verifiers...)
}
