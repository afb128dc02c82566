package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Test Helpers
// =============================================================================

var (
	testRSAOnce sync.Once
	testRSAPriv *rsa.PrivateKey
)

// testRSAKey returns a shared 2048-bit RSA key. Generation is expensive,
// so the key is created once per test binary.
func testRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testRSAOnce.Do(func() {
		var err error
		testRSAPriv, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
	})
	return testRSAPriv
}

// newTestCertificate issues a self-signed certificate for the key.
func newTestCertificate(t *testing.T, priv crypto.Signer) *x509.Certificate {
	t.Helper()

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "token-signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, priv.Public(), priv)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}
	return cert
}

// =============================================================================
// Certificate Acquisition Tests
// =============================================================================

func TestRSAPublicKeyFromCertificateDER(t *testing.T) {
	priv := testRSAKey(t)
	cert := newTestCertificate(t, priv)

	pub, err := RSAPublicKeyFromCertificateDER(cert.Raw)
	if err != nil {
		t.Fatalf("RSAPublicKeyFromCertificateDER() error = %v", err)
	}
	if pub.Public().N.Cmp(priv.N) != 0 {
		t.Error("extracted modulus does not match the signing key")
	}
	if pub.BlockSize() != 256 {
		t.Errorf("BlockSize() = %d, want 256", pub.BlockSize())
	}
}

func TestRSAPublicKeyFromCertificateDER_Garbage(t *testing.T) {
	tests := []struct {
		name string
		der  []byte
	}{
		{"empty", nil},
		{"not DER", []byte("this is not a certificate")},
		{"truncated", []byte{0x30, 0x82, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RSAPublicKeyFromCertificateDER(tt.der)
			if !errors.Is(err, ErrCertificateDecode) {
				t.Errorf("error = %v, want ErrCertificateDecode", err)
			}
		})
	}
}

func TestRSAPublicKeyFromCertificate_NonRSASubject(t *testing.T) {
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}
	cert := newTestCertificate(t, ecPriv)

	_, err = RSAPublicKeyFromCertificate(cert)
	if !errors.Is(err, ErrPublicKeyNotFound) {
		t.Errorf("error = %v, want ErrPublicKeyNotFound", err)
	}
}

// =============================================================================
// Key Handle Tests
// =============================================================================

func TestRSAPrivateKey_PublicKey(t *testing.T) {
	priv := testRSAKey(t)

	handle := NewRSAPrivateKey(priv)
	pub, err := handle.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	if pub.Public().N.Cmp(priv.N) != 0 {
		t.Error("public half does not match the private key")
	}
	if handle.BlockSize() != 256 {
		t.Errorf("BlockSize() = %d, want 256", handle.BlockSize())
	}
}

func TestRSAPrivateKey_NonRSAHandle(t *testing.T) {
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}

	handle := NewRSAPrivateKey(ecPriv)
	if _, err := handle.PublicKey(); err == nil {
		t.Error("PublicKey() accepted a non-RSA handle")
	}
	if handle.BlockSize() != 0 {
		t.Errorf("BlockSize() = %d, want 0 for non-RSA handle", handle.BlockSize())
	}
}
