package cwt

import (
	"errors"
	"fmt"
	"io"

	gocose "github.com/veraison/go-cose"

	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
)

// ErrEd448 is returned when an Ed448 key reaches the COSE bridge.
// go-cose only implements the Ed25519 flavour of EdDSA (-8), so Ed448
// tokens must stay on the compact JWS serialization.
var ErrEd448 = errors.New("Ed448 is not supported for CWT issuance")

// errVerification is the opaque failure surfaced through gocose.Verifier.
var errVerification = errors.New("signature verification failed")

// Signer adapts a token signing strategy to the gocose.Signer interface.
// The strategies already produce COSE-compatible signatures: RSASSA-PKCS1
// emits the raw RSA block and ECDSA emits fixed-width R||S, so the adapter
// only forwards the Sig_structure bytes.
type Signer struct {
	inner jwtcrypto.Signer
	alg   gocose.Algorithm
}

// NewSigner wraps a signing strategy for COSE_Sign1 use.
func NewSigner(s jwtcrypto.Signer) (*Signer, error) {
	if ed, ok := s.(*jwtcrypto.EdDSASigner); ok && ed.Ed448() {
		return nil, ErrEd448
	}
	alg, err := CoseAlgorithm(s.SignatureAlgorithm())
	if err != nil {
		return nil, err
	}
	return &Signer{inner: s, alg: alg}, nil
}

// Algorithm returns the COSE algorithm identifier.
func (s *Signer) Algorithm() gocose.Algorithm {
	return s.alg
}

// Sign signs the Sig_structure bytes.
func (s *Signer) Sign(_ io.Reader, content []byte) ([]byte, error) {
	sig, err := s.inner.Sign(content)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return sig, nil
}

// Verifier adapts a token verification strategy to gocose.Verifier.
type Verifier struct {
	inner jwtcrypto.Verifier
	alg   gocose.Algorithm
}

// NewVerifier wraps a verification strategy for the given JOSE algorithm.
func NewVerifier(v jwtcrypto.Verifier, alg jwtcrypto.Algorithm) (*Verifier, error) {
	if ed, ok := v.(*jwtcrypto.EdDSAVerifier); ok && ed.Ed448() {
		return nil, ErrEd448
	}
	if !v.CanVerify(alg) {
		return nil, fmt.Errorf("verifier cannot handle %s", alg)
	}
	coseAlg, err := CoseAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	return &Verifier{inner: v, alg: coseAlg}, nil
}

// Algorithm returns the COSE algorithm identifier.
func (v *Verifier) Algorithm() gocose.Algorithm {
	return v.alg
}

// Verify checks the signature over the Sig_structure bytes.
func (v *Verifier) Verify(content, signature []byte) error {
	if !v.inner.Verify(content, signature) {
		return errVerification
	}
	return nil
}
