// Package jwt provides the public API for the JSON Web Token toolkit.
// This file exposes signing strategies from internal/crypto.
package jwt

import (
	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// Re-export crypto types
type (
	// Algorithm identifies a JOSE signature algorithm.
	Algorithm = jwtcrypto.Algorithm

	// Hash selects the digest applied to the signing input.
	Hash = jwtcrypto.Hash

	// Signer produces signatures over a signing input.
	Signer = jwtcrypto.Signer

	// Verifier checks signatures over a signing input.
	Verifier = jwtcrypto.Verifier

	// KeyPair holds a freshly generated key pair.
	KeyPair = jwtcrypto.KeyPair
)

// Supported algorithms.
const (
	HS256 = jwtcrypto.AlgHS256
	HS384 = jwtcrypto.AlgHS384
	HS512 = jwtcrypto.AlgHS512
	RS256 = jwtcrypto.AlgRS256
	RS384 = jwtcrypto.AlgRS384
	RS512 = jwtcrypto.AlgRS512
	ES256 = jwtcrypto.AlgES256
	ES384 = jwtcrypto.AlgES384
	ES512 = jwtcrypto.AlgES512
	EdDSA = jwtcrypto.AlgEdDSA
)

// ParseAlgorithm parses an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	return jwtcrypto.ParseAlgorithm(s)
}

// AllAlgorithms lists every supported algorithm.
func AllAlgorithms() []Algorithm {
	return jwtcrypto.AllAlgorithms()
}

// NewSigner constructs the signing strategy for an algorithm from a raw
// private key handle.
func NewSigner(alg Algorithm, key any) (Signer, error) {
	return jwtcrypto.NewSigner(alg, key)
}

// NewVerifier constructs the verification strategy for an algorithm
// from a raw public key handle (or the shared secret for HMAC).
func NewVerifier(alg Algorithm, key any) (Verifier, error) {
	return jwtcrypto.NewVerifier(alg, key)
}

// VerifierForPublicKey checks that a public key type matches the
// algorithm family before constructing the verifier.
func VerifierForPublicKey(alg Algorithm, pub any) (Verifier, error) {
	return jwtcrypto.VerifierForPublicKey(alg, pub)
}

// GenerateKeyPair generates a new key pair suitable for the algorithm.
func GenerateKeyPair(alg Algorithm) (*KeyPair, error) {
	return jwtcrypto.GenerateKeyPair(alg)
}

// GenerateRSAKeyPair generates an RSA key pair with an explicit
// modulus size.
func GenerateRSAKeyPair(alg Algorithm, bits int) (*KeyPair, error) {
	return jwtcrypto.GenerateRSAKeyPair(alg, bits)
}

// GenerateEd448KeyPair generates an Ed448 key pair.
func GenerateEd448KeyPair() (*KeyPair, error) {
	return jwtcrypto.GenerateEd448KeyPair()
}
