// Package jose implements JWS compact serialization (RFC 7515) and the
// JWT claims model (RFC 7519). The signing input is the base64url
// header.payload pair; producing and checking signatures over it is
// delegated to the strategies in internal/crypto.
package jose

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// Typical "typ" header value for JWTs.
const TypeJWT = "JWT"

// Sentinel errors for token parsing and verification.
var (
	// ErrMalformed is returned when a compact serialization cannot be
	// split or decoded.
	ErrMalformed = errors.New("jose: malformed token")

	// ErrUnsupportedAlgorithm is returned when the header "alg" value is
	// not a recognized algorithm.
	ErrUnsupportedAlgorithm = errors.New("jose: unsupported algorithm")

	// ErrSignatureInvalid is returned when no configured verifier
	// accepts the token's signature.
	ErrSignatureInvalid = errors.New("jose: signature verification failed")
)

// Header is the JOSE protected header.
type Header struct {
	Algorithm   string `json:"alg"`
	Type        string `json:"typ,omitempty"`
	KeyID       string `json:"kid,omitempty"`
	ContentType string `json:"cty,omitempty"`
}

// Token is a decoded JWS in compact serialization.
type Token struct {
	Header Header
	Claims Claims

	// signingInput is header.payload exactly as received or produced;
	// re-encoding the parsed JSON would not round-trip byte-for-byte.
	signingInput []byte
	signature    []byte
}

// New creates an unsigned token carrying the given claims.
func New(claims Claims) *Token {
	return &Token{
		Header: Header{Type: TypeJWT},
		Claims: claims,
	}
}

// SigningInput returns the canonical signing input (base64url header,
// a dot, base64url payload). Empty until the token has been decoded or
// signed.
func (t *Token) SigningInput() []byte {
	return t.signingInput
}

// Signature returns the raw signature bytes. Empty until the token has
// been decoded or signed.
func (t *Token) Signature() []byte {
	return t.signature
}

// SignedString signs the token and returns the compact serialization.
// The header "alg" is set from the signer; a caller-provided value is
// overwritten so the label can never disagree with the actual scheme.
func (t *Token) SignedString(signer crypto.Signer) (string, error) {
	t.Header.Algorithm = signer.SignatureAlgorithm().String()
	if t.Header.Type == "" {
		t.Header.Type = TypeJWT
	}

	headerJSON, err := json.Marshal(t.Header)
	if err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}
	claimsJSON, err := json.Marshal(t.Claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}

	input := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)

	sig, err := signer.Sign([]byte(input))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	t.signingInput = []byte(input)
	t.signature = sig

	return input + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Decode parses a compact serialization without verifying the signature.
// Use Verify for anything security-relevant.
func Decode(s string) (*Token, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 parts, got %d", ErrMalformed, len(parts))
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}
	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformed, err)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	claims := Claims{}
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}

	return &Token{
		Header:       header,
		Claims:       claims,
		signingInput: []byte(parts[0] + "." + parts[1]),
		signature:    sig,
	}, nil
}

// Verify decodes a compact serialization and checks its signature
// against the configured verifiers. The first verifier whose CanVerify
// matches the header algorithm decides; there is no second chance with
// a later verifier, so a false verdict from the matching strategy
// rejects the token.
func Verify(s string, verifiers ...crypto.Verifier) (*Token, error) {
	token, err := Decode(s)
	if err != nil {
		return nil, err
	}

	alg, err := crypto.ParseAlgorithm(token.Header.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, token.Header.Algorithm)
	}

	for _, v := range verifiers {
		if !v.CanVerify(alg) {
			continue
		}
		if !v.Verify(token.signingInput, token.signature) {
			return nil, ErrSignatureInvalid
		}
		return token, nil
	}

	return nil, fmt.Errorf("%w: no verifier for %s", ErrSignatureInvalid, alg)
}
