package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
)

// EdDSASigner signs with Ed25519 or Ed448. EdDSA hashes internally, so
// the signing input is passed to the provider unhashed.
type EdDSASigner struct {
	ed25519Key ed25519.PrivateKey
	ed448Key   ed448.PrivateKey
}

var _ Signer = (*EdDSASigner)(nil)

// NewEdDSASigner creates an EdDSA signer from an Ed25519 or Ed448
// private key handle.
func NewEdDSASigner(key any) (*EdDSASigner, error) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		return &EdDSASigner{ed25519Key: k}, nil
	case ed448.PrivateKey:
		return &EdDSASigner{ed448Key: k}, nil
	default:
		return nil, fmt.Errorf("EdDSA requires an Ed25519 or Ed448 private key, got %T", key)
	}
}

// SignatureAlgorithm returns EdDSA.
func (s *EdDSASigner) SignatureAlgorithm() Algorithm {
	return AlgEdDSA
}

// Ed448 reports whether the signer holds an Ed448 key.
func (s *EdDSASigner) Ed448() bool {
	return s.ed448Key != nil
}

// Sign signs the full input (no pre-hashing, empty context for Ed448).
func (s *EdDSASigner) Sign(input []byte) ([]byte, error) {
	if s.ed25519Key != nil {
		return ed25519.Sign(s.ed25519Key, input), nil
	}
	return ed448.Sign(s.ed448Key, input, ""), nil
}

// EdDSAVerifier verifies Ed25519 or Ed448 signatures.
type EdDSAVerifier struct {
	ed25519Key ed25519.PublicKey
	ed448Key   ed448.PublicKey
}

var _ Verifier = (*EdDSAVerifier)(nil)

// NewEdDSAVerifier creates an EdDSA verifier from an Ed25519 or Ed448
// public key handle.
func NewEdDSAVerifier(key any) (*EdDSAVerifier, error) {
	switch k := key.(type) {
	case ed25519.PublicKey:
		return &EdDSAVerifier{ed25519Key: k}, nil
	case ed448.PublicKey:
		return &EdDSAVerifier{ed448Key: k}, nil
	default:
		return nil, fmt.Errorf("EdDSA requires an Ed25519 or Ed448 public key, got %T", key)
	}
}

// Ed448 reports whether the verifier holds an Ed448 key.
func (v *EdDSAVerifier) Ed448() bool {
	return v.ed448Key != nil
}

// CanVerify returns true only for EdDSA.
func (v *EdDSAVerifier) CanVerify(alg Algorithm) bool {
	return alg == AlgEdDSA
}

// Verify reports whether signature is valid over input.
func (v *EdDSAVerifier) Verify(input, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}
	if v.ed25519Key != nil {
		return len(signature) == ed25519.SignatureSize && ed25519.Verify(v.ed25519Key, input, signature)
	}
	return len(signature) == ed448.SignatureSize && ed448.Verify(v.ed448Key, input, signature, "")
}
