package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// Signer produces a signature over a signing input and reports the
// algorithm it signs with. The (key, hash) pairing is fixed at
// construction; a Signer never changes algorithm between calls.
type Signer interface {
	// SignatureAlgorithm returns the algorithm identifier used to label
	// the produced token.
	SignatureAlgorithm() Algorithm

	// Sign signs the input buffer. Provider failures are surfaced as
	// *keys.ProviderError.
	Sign(input []byte) ([]byte, error)
}

// Verifier checks a signature over a signing input.
//
// Verify never returns an error: a bad signature, a malformed or empty
// buffer, and a provider-level failure all collapse to false. Callers
// must treat false as "reject", never as an infrastructure fault.
type Verifier interface {
	// CanVerify reports whether this verifier is configured for exactly
	// the candidate algorithm. No compatible-algorithm fallback.
	CanVerify(alg Algorithm) bool

	// Verify reports whether signature is valid over input.
	Verify(input, signature []byte) bool
}

// errEmptyBuffer guards the provider call path: an empty buffer must
// never reach the provider as a null base address.
var errEmptyBuffer = errors.New("unsupported operation: empty buffer")

// checkBuffer validates a buffer before it is handed to the provider.
func checkBuffer(op string, buf []byte) error {
	if len(buf) == 0 {
		return &keys.ProviderError{Op: op, Err: errEmptyBuffer}
	}
	return nil
}

// NewSigner constructs the signing strategy for an algorithm from a raw
// private key handle.
//
// Expected handle types per family:
//   - HMAC:  []byte secret
//   - RSA:   crypto.Signer with an *rsa.PublicKey (software or HSM)
//   - ECDSA: *ecdsa.PrivateKey
//   - EdDSA: ed25519.PrivateKey or ed448.PrivateKey
func NewSigner(alg Algorithm, key any) (Signer, error) {
	switch alg.Family() {
	case FamilyHMAC:
		secret, ok := key.([]byte)
		if !ok {
			return nil, fmt.Errorf("%s requires a []byte secret, got %T", alg, key)
		}
		return NewHMACKey(secret, alg.Hash())

	case FamilyRSAPKCS1:
		signer, ok := key.(stdcrypto.Signer)
		if !ok {
			return nil, fmt.Errorf("%s requires a crypto.Signer handle, got %T", alg, key)
		}
		if _, ok := signer.Public().(*rsa.PublicKey); !ok {
			return nil, fmt.Errorf("%s requires an RSA key, got %T", alg, signer.Public())
		}
		return NewRSAPKCS1Signer(keys.NewRSAPrivateKey(signer), alg.Hash()), nil

	case FamilyECDSA:
		priv, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%s requires an *ecdsa.PrivateKey, got %T", alg, key)
		}
		return NewECDSASigner(priv, alg.Hash())

	case FamilyEdDSA:
		return NewEdDSASigner(key)

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", alg)
	}
}

// NewVerifier constructs the verification strategy for an algorithm from
// a raw public key handle (or the shared secret for HMAC).
func NewVerifier(alg Algorithm, key any) (Verifier, error) {
	switch alg.Family() {
	case FamilyHMAC:
		secret, ok := key.([]byte)
		if !ok {
			return nil, fmt.Errorf("%s requires a []byte secret, got %T", alg, key)
		}
		return NewHMACKey(secret, alg.Hash())

	case FamilyRSAPKCS1:
		switch pub := key.(type) {
		case *rsa.PublicKey:
			return NewRSAPKCS1Verifier(keys.NewRSAPublicKey(pub), alg.Hash()), nil
		case *keys.RSAPublicKey:
			return NewRSAPKCS1Verifier(pub, alg.Hash()), nil
		default:
			return nil, fmt.Errorf("%s requires an RSA public key, got %T", alg, key)
		}

	case FamilyECDSA:
		pub, ok := key.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%s requires an *ecdsa.PublicKey, got %T", alg, key)
		}
		return NewECDSAVerifier(pub, alg.Hash())

	case FamilyEdDSA:
		return NewEdDSAVerifier(key)

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", alg)
	}
}

// VerifierForPublicKey checks that a public key type matches the
// algorithm family before constructing the verifier. HMAC secrets are
// rejected here; symmetric verification requires NewVerifier.
func VerifierForPublicKey(alg Algorithm, pub any) (Verifier, error) {
	switch pub.(type) {
	case *rsa.PublicKey, *keys.RSAPublicKey:
		if !alg.IsRSA() {
			return nil, fmt.Errorf("RSA key cannot verify %s", alg)
		}
	case *ecdsa.PublicKey:
		if !alg.IsECDSA() {
			return nil, fmt.Errorf("ECDSA key cannot verify %s", alg)
		}
	case ed25519.PublicKey, ed448.PublicKey:
		if !alg.IsEdDSA() {
			return nil, fmt.Errorf("EdDSA key cannot verify %s", alg)
		}
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
	return NewVerifier(alg, pub)
}
