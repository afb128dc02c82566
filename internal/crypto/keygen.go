package crypto

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed448"
)

// KeyPair holds a freshly generated key pair. For HMAC algorithms the
// PrivateKey is the []byte secret and PublicKey is nil.
type KeyPair struct {
	Algorithm  Algorithm
	PrivateKey any
	PublicKey  any
}

// DefaultRSABits is the modulus size used when generating RSA keys.
const DefaultRSABits = 2048

// GenerateKeyPair generates a new key pair suitable for the algorithm.
//
// Example:
//
//	kp, err := crypto.GenerateKeyPair(crypto.AlgRS256)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	signer, err := crypto.NewSigner(kp.Algorithm, kp.PrivateKey)
func GenerateKeyPair(alg Algorithm) (*KeyPair, error) {
	return GenerateKeyPairWithRand(rand.Reader, alg)
}

// GenerateKeyPairWithRand generates a key pair using the provided random
// source. Useful for testing with deterministic randomness.
func GenerateKeyPairWithRand(random io.Reader, alg Algorithm) (*KeyPair, error) {
	if !alg.IsValid() {
		return nil, fmt.Errorf("unsupported algorithm: %s", alg)
	}

	var priv, pub any
	var err error

	switch alg.Family() {
	case FamilyHMAC:
		// Secret length matches the digest length (RFC 7518 minimum).
		secret := make([]byte, alg.Hash().Size())
		if _, err = io.ReadFull(random, secret); err == nil {
			priv = secret
		}

	case FamilyRSAPKCS1:
		var key *rsa.PrivateKey
		key, err = rsa.GenerateKey(random, DefaultRSABits)
		if err == nil {
			priv, pub = key, &key.PublicKey
		}

	case FamilyECDSA:
		var key *ecdsa.PrivateKey
		key, err = ecdsa.GenerateKey(ecdsaCurveFor(alg.Hash()), random)
		if err == nil {
			priv, pub = key, &key.PublicKey
		}

	case FamilyEdDSA:
		var edPub ed25519.PublicKey
		var edPriv ed25519.PrivateKey
		edPub, edPriv, err = ed25519.GenerateKey(random)
		if err == nil {
			priv, pub = edPriv, edPub
		}

	default:
		return nil, fmt.Errorf("key generation not implemented for: %s", alg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", alg, err)
	}

	return &KeyPair{Algorithm: alg, PrivateKey: priv, PublicKey: pub}, nil
}

// GenerateRSAKeyPair generates an RSA key pair with an explicit modulus
// size for the given RSASSA-PKCS1-v1.5 algorithm.
func GenerateRSAKeyPair(alg Algorithm, bits int) (*KeyPair, error) {
	if !alg.IsRSA() {
		return nil, fmt.Errorf("not an RSA algorithm: %s", alg)
	}
	if bits < 2048 {
		return nil, fmt.Errorf("RSA modulus must be at least 2048 bits, got %d", bits)
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s key: %w", alg, err)
	}
	return &KeyPair{Algorithm: alg, PrivateKey: key, PublicKey: &key.PublicKey}, nil
}

// GenerateEd448KeyPair generates an Ed448 key pair. Ed448 signs under
// the same "EdDSA" header value as Ed25519.
func GenerateEd448KeyPair() (*KeyPair, error) {
	pub, priv, err := ed448.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed448 key: %w", err)
	}
	return &KeyPair{Algorithm: AlgEdDSA, PrivateKey: priv, PublicKey: pub}, nil
}

// PublicOf returns the public half of any supported private key handle.
func PublicOf(priv any) (any, error) {
	switch k := priv.(type) {
	case []byte:
		return nil, fmt.Errorf("HMAC secrets have no public half")
	case *rsa.PrivateKey:
		return &k.PublicKey, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	case ed25519.PrivateKey:
		return k.Public(), nil
	case ed448.PrivateKey:
		return k.Public(), nil
	case stdcrypto.Signer:
		return k.Public(), nil
	default:
		return nil, fmt.Errorf("unsupported private key type: %T", priv)
	}
}
