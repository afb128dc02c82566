package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// ecdsaAlgorithm maps a hash selector to the ECDSA algorithm identifier.
func ecdsaAlgorithm(h Hash) Algorithm {
	switch h {
	case HashSHA256:
		return AlgES256
	case HashSHA384:
		return AlgES384
	case HashSHA512:
		return AlgES512
	}
	panic("crypto: no ECDSA algorithm for hash " + h.String())
}

// ecdsaCurveFor returns the curve required for a hash selector.
// RFC 7518 fixes the pairing: ES256=P-256, ES384=P-384, ES512=P-521.
func ecdsaCurveFor(h Hash) elliptic.Curve {
	switch h {
	case HashSHA256:
		return elliptic.P256()
	case HashSHA384:
		return elliptic.P384()
	case HashSHA512:
		return elliptic.P521()
	}
	panic("crypto: no ECDSA curve for hash " + h.String())
}

// ecdsaKeySize returns the per-coordinate byte width of the JOSE raw
// signature encoding for a curve.
func ecdsaKeySize(curve elliptic.Curve) int {
	return (curve.Params().BitSize + 7) / 8
}

// ECDSASigner signs with ECDSA over a fixed hash, emitting the JOSE raw
// R||S encoding (fixed-width per coordinate), not ASN.1 DER.
type ECDSASigner struct {
	key     *ecdsa.PrivateKey
	hash    Hash
	keySize int
}

var _ Signer = (*ECDSASigner)(nil)

// NewECDSASigner creates an ECDSA signer. The curve/hash pairing is
// enforced here: a P-384 key cannot sign ES256 tokens.
func NewECDSASigner(key *ecdsa.PrivateKey, hash Hash) (*ECDSASigner, error) {
	want := ecdsaCurveFor(hash)
	if key.Curve != want {
		return nil, fmt.Errorf("%s requires curve %s, key uses %s",
			ecdsaAlgorithm(hash), want.Params().Name, key.Curve.Params().Name)
	}
	return &ECDSASigner{key: key, hash: hash, keySize: ecdsaKeySize(key.Curve)}, nil
}

// SignatureAlgorithm returns the (ECDSA, hash) identifier.
func (s *ECDSASigner) SignatureAlgorithm() Algorithm {
	return ecdsaAlgorithm(s.hash)
}

// Sign digests input and signs it, returning R||S with each coordinate
// left-padded to the curve width.
func (s *ECDSASigner) Sign(input []byte) ([]byte, error) {
	digest := s.hash.Sum(input)
	if err := checkBuffer("ecdsa sign", digest); err != nil {
		return nil, err
	}

	r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest)
	if err != nil {
		return nil, &keys.ProviderError{Op: "ecdsa sign", Err: err}
	}

	sig := make([]byte, 2*s.keySize)
	r.FillBytes(sig[:s.keySize])
	sv.FillBytes(sig[s.keySize:])
	return sig, nil
}

// ECDSAVerifier verifies JOSE raw R||S ECDSA signatures over a fixed hash.
type ECDSAVerifier struct {
	key     *ecdsa.PublicKey
	hash    Hash
	keySize int
}

var _ Verifier = (*ECDSAVerifier)(nil)

// NewECDSAVerifier creates an ECDSA verifier with the same curve/hash
// pairing rule as NewECDSASigner.
func NewECDSAVerifier(key *ecdsa.PublicKey, hash Hash) (*ECDSAVerifier, error) {
	want := ecdsaCurveFor(hash)
	if key.Curve != want {
		return nil, fmt.Errorf("%s requires curve %s, key uses %s",
			ecdsaAlgorithm(hash), want.Params().Name, key.Curve.Params().Name)
	}
	return &ECDSAVerifier{key: key, hash: hash, keySize: ecdsaKeySize(key.Curve)}, nil
}

// CanVerify returns true only for exactly (ECDSA, configured hash).
func (v *ECDSAVerifier) CanVerify(alg Algorithm) bool {
	return alg == ecdsaAlgorithm(v.hash)
}

// Verify reports whether signature is a valid raw R||S signature over
// input. Wrong-length signatures are rejected before any math runs.
func (v *ECDSAVerifier) Verify(input, signature []byte) bool {
	if len(signature) != 2*v.keySize {
		return false
	}

	digest := v.hash.Sum(input)
	r := new(big.Int).SetBytes(signature[:v.keySize])
	s := new(big.Int).SetBytes(signature[v.keySize:])
	return ecdsa.Verify(v.key, digest, r, s)
}
