// Package cwt implements CWT (RFC 8392) issuance and verification on top
// of COSE_Sign1 (RFC 9052). It bridges the JOSE algorithm set to the IANA
// COSE Algorithms Registry and reuses the same signing strategies as the
// compact JWS serialization.
package cwt

import (
	"fmt"

	gocose "github.com/veraison/go-cose"

	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// COSE Algorithm IDs (IANA COSE Algorithms Registry).
const (
	AlgES256 gocose.Algorithm = -7   // ECDSA w/ SHA-256
	AlgES384 gocose.Algorithm = -35  // ECDSA w/ SHA-384
	AlgES512 gocose.Algorithm = -36  // ECDSA w/ SHA-512
	AlgEdDSA gocose.Algorithm = -8   // EdDSA (Ed25519)
	AlgRS256 gocose.Algorithm = -257 // RSASSA-PKCS1-v1_5 w/ SHA-256
	AlgRS384 gocose.Algorithm = -258 // RSASSA-PKCS1-v1_5 w/ SHA-384
	AlgRS512 gocose.Algorithm = -259 // RSASSA-PKCS1-v1_5 w/ SHA-512
)

// CoseAlgorithm converts a JOSE algorithm to its COSE registry identifier.
// HMAC algorithms are rejected: COSE carries MACs in COSE_Mac0 structures,
// not in COSE_Sign1, so symmetric tokens have no mapping here.
func CoseAlgorithm(alg jwtcrypto.Algorithm) (gocose.Algorithm, error) {
	switch alg {
	case jwtcrypto.AlgRS256:
		return AlgRS256, nil
	case jwtcrypto.AlgRS384:
		return AlgRS384, nil
	case jwtcrypto.AlgRS512:
		return AlgRS512, nil
	case jwtcrypto.AlgES256:
		return AlgES256, nil
	case jwtcrypto.AlgES384:
		return AlgES384, nil
	case jwtcrypto.AlgES512:
		return AlgES512, nil
	case jwtcrypto.AlgEdDSA:
		return AlgEdDSA, nil
	default:
		return 0, fmt.Errorf("algorithm %s has no COSE_Sign1 mapping", alg)
	}
}

// JOSEAlgorithm converts a COSE registry identifier back to the JOSE set.
func JOSEAlgorithm(alg gocose.Algorithm) (jwtcrypto.Algorithm, error) {
	switch alg {
	case AlgRS256:
		return jwtcrypto.AlgRS256, nil
	case AlgRS384:
		return jwtcrypto.AlgRS384, nil
	case AlgRS512:
		return jwtcrypto.AlgRS512, nil
	case AlgES256:
		return jwtcrypto.AlgES256, nil
	case AlgES384:
		return jwtcrypto.AlgES384, nil
	case AlgES512:
		return jwtcrypto.AlgES512, nil
	case AlgEdDSA:
		return jwtcrypto.AlgEdDSA, nil
	default:
		return "", fmt.Errorf("unsupported COSE algorithm: %d", alg)
	}
}
