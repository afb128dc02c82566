package crypto

import (
	"crypto/hmac"
	"fmt"
)

// hmacAlgorithm maps a hash selector to the HMAC algorithm identifier.
func hmacAlgorithm(h Hash) Algorithm {
	switch h {
	case HashSHA256:
		return AlgHS256
	case HashSHA384:
		return AlgHS384
	case HashSHA512:
		return AlgHS512
	}
	panic("crypto: no HMAC algorithm for hash " + h.String())
}

// HMACKey is the symmetric strategy: the same secret both signs and
// verifies, so one type implements Signer and Verifier.
type HMACKey struct {
	secret []byte
	hash   Hash
}

var (
	_ Signer   = (*HMACKey)(nil)
	_ Verifier = (*HMACKey)(nil)
)

// NewHMACKey creates an HMAC strategy from a shared secret and a hash
// selector. The secret must not be empty.
func NewHMACKey(secret []byte, hash Hash) (*HMACKey, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("HMAC secret must not be empty")
	}
	// Copy: the strategy must stay immutable even if the caller reuses
	// the slice.
	key := make([]byte, len(secret))
	copy(key, secret)
	return &HMACKey{secret: key, hash: hash}, nil
}

// SignatureAlgorithm returns the (HMAC, hash) identifier.
func (k *HMACKey) SignatureAlgorithm() Algorithm {
	return hmacAlgorithm(k.hash)
}

// Sign computes the HMAC tag over input.
func (k *HMACKey) Sign(input []byte) ([]byte, error) {
	mac := hmac.New(k.hash.CryptoHash().New, k.secret)
	mac.Write(input)
	return mac.Sum(nil), nil
}

// CanVerify returns true only for exactly (HMAC, configured hash).
func (k *HMACKey) CanVerify(alg Algorithm) bool {
	return alg == hmacAlgorithm(k.hash)
}

// Verify recomputes the tag and compares in constant time.
func (k *HMACKey) Verify(input, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}
	expected, err := k.Sign(input)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, signature)
}
