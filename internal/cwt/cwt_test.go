package cwt

import (
	"bytes"
	"errors"
	"testing"
	"time"

	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newSignerVerifier(t *testing.T, alg jwtcrypto.Algorithm) (jwtcrypto.Signer, jwtcrypto.Verifier) {
	t.Helper()

	kp, err := jwtcrypto.GenerateKeyPair(alg)
	if err != nil {
		t.Fatalf("failed to generate %s key: %v", alg, err)
	}
	signer, err := jwtcrypto.NewSigner(alg, kp.PrivateKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	verifier, err := jwtcrypto.NewVerifier(alg, kp.PublicKey)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}
	return signer, verifier
}

func testCWTClaims() *Claims {
	return &Claims{
		Issuer:     "https://issuer.example.com",
		Subject:    "device:sensor-17",
		Audience:   "https://api.example.com",
		Expiration: time.Unix(1893456000, 0),
		IssuedAt:   time.Unix(1756641600, 0),
		CWTID:      []byte("cwt-0001"),
		Custom:     map[string]any{"scope": "telemetry"},
	}
}

// =============================================================================
// Sign and Verify Tests
// =============================================================================

func TestSignVerify(t *testing.T) {
	algorithms := []jwtcrypto.Algorithm{
		jwtcrypto.AlgRS256,
		jwtcrypto.AlgES256,
		jwtcrypto.AlgES512,
		jwtcrypto.AlgEdDSA,
	}

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			signer, verifier := newSignerVerifier(t, alg)

			data, err := Sign(testCWTClaims(), signer, "")
			if err != nil {
				t.Fatalf("Sign() error = %v", err)
			}

			claims, err := Verify(data, verifier)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Subject != "device:sensor-17" {
				t.Errorf("sub = %q, want device:sensor-17", claims.Subject)
			}
			if !bytes.Equal(claims.CWTID, []byte("cwt-0001")) {
				t.Errorf("cti = %q, want cwt-0001", claims.CWTID)
			}
			if claims.Custom["scope"] != "telemetry" {
				t.Errorf("scope = %v, want telemetry", claims.Custom["scope"])
			}
			if !claims.Expiration.Equal(time.Unix(1893456000, 0)) {
				t.Errorf("exp = %v, want %v", claims.Expiration, time.Unix(1893456000, 0))
			}
		})
	}
}

func TestSign_NilClaims(t *testing.T) {
	signer, _ := newSignerVerifier(t, jwtcrypto.AlgES256)
	if _, err := Sign(nil, signer, ""); err == nil {
		t.Error("Sign() accepted nil claims")
	}
}

func TestSign_HMACRejected(t *testing.T) {
	kp, err := jwtcrypto.GenerateKeyPair(jwtcrypto.AlgHS256)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := jwtcrypto.NewSigner(jwtcrypto.AlgHS256, kp.PrivateKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	if _, err := Sign(testCWTClaims(), signer, ""); err == nil {
		t.Error("Sign() accepted an HMAC signer for COSE_Sign1")
	}
}

func TestSign_Ed448Rejected(t *testing.T) {
	kp, err := jwtcrypto.GenerateEd448KeyPair()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := jwtcrypto.NewSigner(jwtcrypto.AlgEdDSA, kp.PrivateKey)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}

	_, err = Sign(testCWTClaims(), signer, "")
	if !errors.Is(err, ErrEd448) {
		t.Errorf("error = %v, want ErrEd448", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	signer, verifier := newSignerVerifier(t, jwtcrypto.AlgES256)

	data, err := Sign(testCWTClaims(), signer, "")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	// Flip a byte in the encoded payload region.
	tampered := make([]byte, len(data))
	copy(tampered, data)
	tampered[len(tampered)/2] ^= 0x01

	if _, err := Verify(tampered, verifier); err == nil {
		t.Error("Verify() accepted a tampered message")
	}
}

func TestVerify_WrongKey(t *testing.T) {
	signer, _ := newSignerVerifier(t, jwtcrypto.AlgES256)
	_, otherVerifier := newSignerVerifier(t, jwtcrypto.AlgES256)

	data, err := Sign(testCWTClaims(), signer, "")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if _, err := Verify(data, otherVerifier); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("error = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerify_NoMatchingVerifier(t *testing.T) {
	signer, _ := newSignerVerifier(t, jwtcrypto.AlgES256)
	_, rsaVerifier := newSignerVerifier(t, jwtcrypto.AlgRS256)

	data, err := Sign(testCWTClaims(), signer, "")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	if _, err := Verify(data, rsaVerifier); err == nil {
		t.Error("Verify() passed with no matching verifier")
	}
}

func TestVerify_Malformed(t *testing.T) {
	_, verifier := newSignerVerifier(t, jwtcrypto.AlgES256)

	for _, data := range [][]byte{nil, []byte("not cbor"), {0xa0}} {
		if _, err := Verify(data, verifier); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify(%x) error = %v, want ErrMalformed", data, err)
		}
	}
}

// =============================================================================
// Decode and KeyID Tests
// =============================================================================

func TestDecode(t *testing.T) {
	signer, _ := newSignerVerifier(t, jwtcrypto.AlgRS256)

	data, err := Sign(testCWTClaims(), signer, "hsm-slot-0")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, alg, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if alg != jwtcrypto.AlgRS256 {
		t.Errorf("alg = %s, want RS256", alg)
	}
	if claims.Issuer != "https://issuer.example.com" {
		t.Errorf("iss = %q", claims.Issuer)
	}

	if kid := KeyID(data); kid != "hsm-slot-0" {
		t.Errorf("KeyID() = %q, want hsm-slot-0", kid)
	}
}

func TestKeyID_Absent(t *testing.T) {
	signer, _ := newSignerVerifier(t, jwtcrypto.AlgES256)

	data, err := Sign(testCWTClaims(), signer, "")
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if kid := KeyID(data); kid != "" {
		t.Errorf("KeyID() = %q, want empty", kid)
	}
}

// =============================================================================
// Claims Conversion Tests
// =============================================================================

func TestClaimsCBORRoundTrip(t *testing.T) {
	orig := testCWTClaims()
	orig.NotBefore = time.Unix(1756638000, 0)

	data, err := orig.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR() error = %v", err)
	}

	decoded := &Claims{}
	if err := decoded.UnmarshalCBOR(data); err != nil {
		t.Fatalf("UnmarshalCBOR() error = %v", err)
	}

	if decoded.Issuer != orig.Issuer {
		t.Errorf("iss = %q, want %q", decoded.Issuer, orig.Issuer)
	}
	if decoded.Subject != orig.Subject {
		t.Errorf("sub = %q, want %q", decoded.Subject, orig.Subject)
	}
	if decoded.Audience != orig.Audience {
		t.Errorf("aud = %q, want %q", decoded.Audience, orig.Audience)
	}
	if !decoded.Expiration.Equal(orig.Expiration) {
		t.Errorf("exp = %v, want %v", decoded.Expiration, orig.Expiration)
	}
	if !decoded.NotBefore.Equal(orig.NotBefore) {
		t.Errorf("nbf = %v, want %v", decoded.NotBefore, orig.NotBefore)
	}
	if !bytes.Equal(decoded.CWTID, orig.CWTID) {
		t.Errorf("cti = %x, want %x", decoded.CWTID, orig.CWTID)
	}
	if decoded.Custom["scope"] != "telemetry" {
		t.Errorf("scope = %v, want telemetry", decoded.Custom["scope"])
	}
}

func TestClaimsCBOR_Deterministic(t *testing.T) {
	a, err := testCWTClaims().MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR() error = %v", err)
	}
	b, err := testCWTClaims().MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR() error = %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding is not deterministic")
	}
}

func TestFromJOSE(t *testing.T) {
	jc := jose.Claims{}
	jc.SetIssuer("issuer")
	jc.SetSubject("subject")
	jc.SetAudience("api")
	jc.SetExpiresAt(time.Unix(1893456000, 0))
	jc.SetID("token-42")
	jc["scope"] = "read"

	c := FromJOSE(jc)
	if c.Issuer != "issuer" || c.Subject != "subject" || c.Audience != "api" {
		t.Errorf("converted claims = %+v", c)
	}
	if !bytes.Equal(c.CWTID, []byte("token-42")) {
		t.Errorf("cti = %q, want token-42", c.CWTID)
	}
	if !c.Expiration.Equal(time.Unix(1893456000, 0)) {
		t.Errorf("exp = %v", c.Expiration)
	}
	if c.Custom["scope"] != "read" {
		t.Errorf("scope = %v, want read", c.Custom["scope"])
	}
}

func TestToJOSERoundTrip(t *testing.T) {
	orig := testCWTClaims()

	back := FromJOSE(orig.ToJOSE())
	if back.Issuer != orig.Issuer || back.Subject != orig.Subject {
		t.Errorf("round trip changed identity claims: %+v", back)
	}
	if !back.Expiration.Equal(orig.Expiration) {
		t.Errorf("exp = %v, want %v", back.Expiration, orig.Expiration)
	}
	if !bytes.Equal(back.CWTID, orig.CWTID) {
		t.Errorf("cti = %q, want %q", back.CWTID, orig.CWTID)
	}
}

// =============================================================================
// Algorithm Mapping Tests
// =============================================================================

func TestAlgorithmMapping(t *testing.T) {
	for _, alg := range jwtcrypto.AsymmetricAlgorithms() {
		coseAlg, err := CoseAlgorithm(alg)
		if err != nil {
			t.Errorf("CoseAlgorithm(%s) error = %v", alg, err)
			continue
		}
		back, err := JOSEAlgorithm(coseAlg)
		if err != nil {
			t.Errorf("JOSEAlgorithm(%d) error = %v", coseAlg, err)
			continue
		}
		if back != alg {
			t.Errorf("mapping round trip: %s -> %d -> %s", alg, coseAlg, back)
		}
	}

	if _, err := CoseAlgorithm(jwtcrypto.AlgHS256); err == nil {
		t.Error("CoseAlgorithm accepted an HMAC algorithm")
	}
	if _, err := JOSEAlgorithm(0); err == nil {
		t.Error("JOSEAlgorithm accepted an unknown identifier")
	}
}
