// Package crypto provides the signing and verification strategies behind
// JSON Web Signatures. It supports HMAC, RSASSA-PKCS1-v1.5, ECDSA and
// EdDSA (Ed25519, plus Ed448 via the cloudflare/circl library). The RSA
// and hash primitives themselves come from the standard library provider;
// this package only selects and drives them.
package crypto

import (
	stdcrypto "crypto"
	"fmt"
	"sort"
)

// Algorithm identifies a JOSE signature algorithm (RFC 7518).
type Algorithm string

// HMAC algorithms.
const (
	AlgHS256 Algorithm = "HS256"
	AlgHS384 Algorithm = "HS384"
	AlgHS512 Algorithm = "HS512"
)

// RSASSA-PKCS1-v1.5 algorithms.
const (
	AlgRS256 Algorithm = "RS256"
	AlgRS384 Algorithm = "RS384"
	AlgRS512 Algorithm = "RS512"
)

// ECDSA algorithms.
const (
	AlgES256 Algorithm = "ES256"
	AlgES384 Algorithm = "ES384"
	AlgES512 Algorithm = "ES512"
)

// EdDSA (RFC 8037). Covers Ed25519 and Ed448; the curve is carried by
// the key, not the algorithm name.
const (
	AlgEdDSA Algorithm = "EdDSA"
)

// Family categorizes algorithms by signature scheme.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyHMAC
	FamilyRSAPKCS1
	FamilyECDSA
	FamilyEdDSA
)

// Hash selects the digest applied to the signing input. It is a closed
// enum: every constant maps to exactly one provider hash and one PKCS#1
// v1.5 DigestInfo identifier, with no fallback.
type Hash int

const (
	// HashNone is used by algorithms that hash internally (EdDSA).
	HashNone Hash = iota
	HashSHA256
	HashSHA384
	HashSHA512
)

// CryptoHash maps the hash selector to the provider identifier. Passing
// the returned value to the provider's RSA sign primitive selects PKCS#1
// v1.5 padding with the matching DigestInfo. The mapping is total over
// the declared constants; a value outside the enum is a programming
// error and panics rather than silently selecting a wrong padding.
func (h Hash) CryptoHash() stdcrypto.Hash {
	switch h {
	case HashSHA256:
		return stdcrypto.SHA256
	case HashSHA384:
		return stdcrypto.SHA384
	case HashSHA512:
		return stdcrypto.SHA512
	case HashNone:
		return stdcrypto.Hash(0)
	}
	panic(fmt.Sprintf("crypto: unknown hash selector %d", int(h)))
}

// Sum computes the digest of input with the selected hash.
func (h Hash) Sum(input []byte) []byte {
	hasher := h.CryptoHash().New()
	hasher.Write(input)
	return hasher.Sum(nil)
}

// Size returns the digest length in bytes.
func (h Hash) Size() int {
	return h.CryptoHash().Size()
}

// String returns the hash name.
func (h Hash) String() string {
	switch h {
	case HashSHA256:
		return "SHA-256"
	case HashSHA384:
		return "SHA-384"
	case HashSHA512:
		return "SHA-512"
	default:
		return "none"
	}
}

// algorithmInfo holds metadata about an algorithm.
type algorithmInfo struct {
	Family      Family
	Hash        Hash
	Description string
}

// algorithms maps Algorithm to its metadata.
var algorithms = map[Algorithm]algorithmInfo{
	AlgHS256: {FamilyHMAC, HashSHA256, "HMAC with SHA-256"},
	AlgHS384: {FamilyHMAC, HashSHA384, "HMAC with SHA-384"},
	AlgHS512: {FamilyHMAC, HashSHA512, "HMAC with SHA-512"},

	AlgRS256: {FamilyRSAPKCS1, HashSHA256, "RSASSA-PKCS1-v1.5 with SHA-256"},
	AlgRS384: {FamilyRSAPKCS1, HashSHA384, "RSASSA-PKCS1-v1.5 with SHA-384"},
	AlgRS512: {FamilyRSAPKCS1, HashSHA512, "RSASSA-PKCS1-v1.5 with SHA-512"},

	AlgES256: {FamilyECDSA, HashSHA256, "ECDSA with P-256 and SHA-256"},
	AlgES384: {FamilyECDSA, HashSHA384, "ECDSA with P-384 and SHA-384"},
	AlgES512: {FamilyECDSA, HashSHA512, "ECDSA with P-521 and SHA-512"},

	AlgEdDSA: {FamilyEdDSA, HashNone, "EdDSA (Ed25519 or Ed448)"},
}

// IsValid returns true if the algorithm is recognized.
func (a Algorithm) IsValid() bool {
	_, ok := algorithms[a]
	return ok
}

// Family returns the signature scheme family.
func (a Algorithm) Family() Family {
	if info, ok := algorithms[a]; ok {
		return info.Family
	}
	return FamilyUnknown
}

// Hash returns the digest selector paired with this algorithm.
func (a Algorithm) Hash() Hash {
	if info, ok := algorithms[a]; ok {
		return info.Hash
	}
	return HashNone
}

// IsHMAC returns true for symmetric (HMAC) algorithms.
func (a Algorithm) IsHMAC() bool {
	return a.Family() == FamilyHMAC
}

// IsRSA returns true for RSASSA-PKCS1-v1.5 algorithms.
func (a Algorithm) IsRSA() bool {
	return a.Family() == FamilyRSAPKCS1
}

// IsECDSA returns true for ECDSA algorithms.
func (a Algorithm) IsECDSA() bool {
	return a.Family() == FamilyECDSA
}

// IsEdDSA returns true for EdDSA.
func (a Algorithm) IsEdDSA() bool {
	return a.Family() == FamilyEdDSA
}

// Description returns a human-readable description of the algorithm.
func (a Algorithm) Description() string {
	if info, ok := algorithms[a]; ok {
		return info.Description
	}
	return "Unknown algorithm"
}

// String returns the algorithm identifier as embedded in token headers.
func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm parses a header "alg" value into an Algorithm.
// Returns an error if the algorithm is not recognized.
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(s)
	if !alg.IsValid() {
		return "", fmt.Errorf("unknown algorithm: %s", s)
	}
	return alg, nil
}

// AllAlgorithms returns all supported algorithms in stable order.
func AllAlgorithms() []Algorithm {
	result := make([]Algorithm, 0, len(algorithms))
	for alg := range algorithms {
		result = append(result, alg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// AsymmetricAlgorithms returns all algorithms usable with public-key
// verification.
func AsymmetricAlgorithms() []Algorithm {
	var result []Algorithm
	for _, alg := range AllAlgorithms() {
		if !alg.IsHMAC() {
			result = append(result, alg)
		}
	}
	return result
}
