package jose

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// JWK is a public JSON Web Key (RFC 7517). Only the public members are
// modeled; this type exists to publish verification keys, not to import
// private ones.
type JWK struct {
	KeyType   string `json:"kty"`
	Use       string `json:"use,omitempty"`
	KeyID     string `json:"kid,omitempty"`
	Algorithm string `json:"alg,omitempty"`

	// RSA members
	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`

	// EC members
	Curve string `json:"crv,omitempty"`
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
}

// JWKS is a JSON Web Key Set.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewJWK builds the public JWK for a verification key.
func NewJWK(pub any, kid string, alg crypto.Algorithm) (JWK, error) {
	jwk := JWK{
		Use:       "sig",
		KeyID:     kid,
		Algorithm: alg.String(),
	}

	switch k := pub.(type) {
	case *keys.RSAPublicKey:
		return NewJWK(k.Public(), kid, alg)

	case *rsa.PublicKey:
		jwk.KeyType = "RSA"
		jwk.N = b64BigInt(k.N)
		jwk.E = b64BigInt(big.NewInt(int64(k.E)))

	case *ecdsa.PublicKey:
		jwk.KeyType = "EC"
		jwk.Curve = k.Curve.Params().Name
		size := (k.Curve.Params().BitSize + 7) / 8
		jwk.X = b64FixedInt(k.X, size)
		jwk.Y = b64FixedInt(k.Y, size)

	case ed25519.PublicKey:
		jwk.KeyType = "OKP"
		jwk.Curve = "Ed25519"
		jwk.X = base64.RawURLEncoding.EncodeToString(k)

	case ed448.PublicKey:
		jwk.KeyType = "OKP"
		jwk.Curve = "Ed448"
		jwk.X = base64.RawURLEncoding.EncodeToString(k)

	default:
		return JWK{}, fmt.Errorf("unsupported public key type: %T", pub)
	}

	return jwk, nil
}

func b64BigInt(n *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(n.Bytes())
}

func b64FixedInt(n *big.Int, size int) string {
	buf := make([]byte, size)
	n.FillBytes(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
