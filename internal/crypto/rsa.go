package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// rsaPKCS1Algorithm maps a hash selector to the RSASSA-PKCS1-v1.5
// algorithm identifier. Total over the signing hashes; no default case,
// so an unmapped selector fails loudly instead of mislabeling a token.
func rsaPKCS1Algorithm(h Hash) Algorithm {
	switch h {
	case HashSHA256:
		return AlgRS256
	case HashSHA384:
		return AlgRS384
	case HashSHA512:
		return AlgRS512
	}
	panic("crypto: no RSASSA-PKCS1-v1.5 algorithm for hash " + h.String())
}

// RSAPKCS1Signer signs with RSASSA-PKCS1-v1.5 over a fixed hash.
// Immutable after construction and safe for concurrent use, assuming the
// underlying key handle is safe for concurrent read-only use.
type RSAPKCS1Signer struct {
	key  *keys.RSAPrivateKey
	hash Hash
}

var _ Signer = (*RSAPKCS1Signer)(nil)

// NewRSAPKCS1Signer creates a signer from a private key handle and a
// hash selector. The pairing is fixed for the signer's lifetime.
func NewRSAPKCS1Signer(key *keys.RSAPrivateKey, hash Hash) *RSAPKCS1Signer {
	return &RSAPKCS1Signer{key: key, hash: hash}
}

// SignatureAlgorithm returns the (RSASSA-PKCS1-v1.5, hash) identifier.
func (s *RSAPKCS1Signer) SignatureAlgorithm() Algorithm {
	return rsaPKCS1Algorithm(s.hash)
}

// Sign digests input with the configured hash and invokes the provider's
// raw RSA sign primitive with PKCS#1 v1.5 padding. The returned buffer
// length equals the key's modulus size (block size).
func (s *RSAPKCS1Signer) Sign(input []byte) ([]byte, error) {
	digest := s.hash.Sum(input)
	if err := checkBuffer("rsa sign", digest); err != nil {
		return nil, err
	}

	sig, err := s.key.Sign(rand.Reader, digest, s.hash.CryptoHash())
	if err != nil {
		var pErr *keys.ProviderError
		if errors.As(err, &pErr) {
			return nil, err
		}
		return nil, &keys.ProviderError{Op: "rsa sign", Err: err}
	}
	return sig, nil
}

// RSAPKCS1Verifier verifies RSASSA-PKCS1-v1.5 signatures over a fixed
// hash. Immutable after construction and safe for concurrent use.
type RSAPKCS1Verifier struct {
	key  *keys.RSAPublicKey
	hash Hash
}

var _ Verifier = (*RSAPKCS1Verifier)(nil)

// NewRSAPKCS1Verifier creates a verifier from a public key handle and a
// hash selector.
func NewRSAPKCS1Verifier(key *keys.RSAPublicKey, hash Hash) *RSAPKCS1Verifier {
	return &RSAPKCS1Verifier{key: key, hash: hash}
}

// CanVerify returns true only for exactly (RSASSA-PKCS1-v1.5, configured
// hash). Other RSA hash variants are rejected.
func (v *RSAPKCS1Verifier) CanVerify(alg Algorithm) bool {
	return alg == rsaPKCS1Algorithm(v.hash)
}

// Verify reports whether signature is a valid PKCS#1 v1.5 signature over
// input. Every provider status other than success collapses to false,
// including malformed and empty buffers, which are pre-checked before
// reaching the provider.
func (v *RSAPKCS1Verifier) Verify(input, signature []byte) bool {
	if len(signature) == 0 {
		return false
	}

	digest := v.hash.Sum(input)
	if len(digest) == 0 {
		return false
	}

	return rsa.VerifyPKCS1v15(v.key.Public(), v.hash.CryptoHash(), digest, signature) == nil
}
