package cwt

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	gocose "github.com/veraison/go-cose"

	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// ContentType is the CoAP content type carried in the protected header.
const ContentType = "application/cwt"

// ErrMalformed is returned when the input is not a COSE_Sign1 structure.
var ErrMalformed = errors.New("malformed CWT")

// ErrSignatureInvalid is returned when no verifier accepts the signature.
var ErrSignatureInvalid = errors.New("CWT signature is invalid")

// Sign encodes the claims as canonical CBOR and wraps them in a signed
// COSE_Sign1 message. kid, when non-empty, is carried in the protected
// header as a byte string.
func Sign(claims *Claims, signer jwtcrypto.Signer, kid string) ([]byte, error) {
	if claims == nil {
		return nil, fmt.Errorf("claims are required")
	}

	coseSigner, err := NewSigner(signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create COSE signer: %w", err)
	}

	payload, err := claims.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claims: %w", err)
	}

	protected := gocose.Headers{
		Protected: gocose.ProtectedHeader{
			gocose.HeaderLabelAlgorithm:   coseSigner.Algorithm(),
			gocose.HeaderLabelContentType: ContentType,
		},
	}
	if kid != "" {
		protected.Protected[gocose.HeaderLabelKeyID] = []byte(kid)
	}

	msg := gocose.NewSign1Message()
	msg.Headers = protected
	msg.Payload = payload

	if err := msg.Sign(nil, nil, coseSigner); err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	return msg.MarshalCBOR()
}

// Decode parses a COSE_Sign1 message without verifying its signature and
// returns the claims together with the declared algorithm.
func Decode(data []byte) (*Claims, jwtcrypto.Algorithm, error) {
	msg, alg, err := parseSign1(data)
	if err != nil {
		return nil, "", err
	}

	claims := &Claims{}
	if err := claims.UnmarshalCBOR(msg.Payload); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, alg, nil
}

// Verify checks the COSE_Sign1 signature against the provided verification
// strategies and returns the claims on success. The first strategy that
// accepts the declared algorithm decides the outcome.
func Verify(data []byte, verifiers ...jwtcrypto.Verifier) (*Claims, error) {
	msg, alg, err := parseSign1(data)
	if err != nil {
		return nil, err
	}

	for _, v := range verifiers {
		if !v.CanVerify(alg) {
			continue
		}
		coseVerifier, err := NewVerifier(v, alg)
		if err != nil {
			return nil, err
		}
		if err := msg.Verify(nil, coseVerifier); err != nil {
			return nil, ErrSignatureInvalid
		}
		claims := &Claims{}
		if err := claims.UnmarshalCBOR(msg.Payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return claims, nil
	}

	return nil, fmt.Errorf("no verifier accepts algorithm %s", alg)
}

// parseSign1 decodes the COSE_Sign1 envelope and resolves its algorithm.
func parseSign1(data []byte) (*gocose.Sign1Message, jwtcrypto.Algorithm, error) {
	var msg gocose.Sign1Message
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	coseAlg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing algorithm header", ErrMalformed)
	}
	alg, err := JOSEAlgorithm(coseAlg)
	if err != nil {
		return nil, "", err
	}
	return &msg, alg, nil
}

// KeyID extracts the kid protected header, if present.
func KeyID(data []byte) string {
	var msg gocose.Sign1Message
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return ""
	}
	if kid, ok := msg.Headers.Protected[gocose.HeaderLabelKeyID]; ok {
		if b, ok := kid.([]byte); ok {
			return string(b)
		}
	}
	return ""
}
