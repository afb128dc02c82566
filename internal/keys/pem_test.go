package keys

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudflare/circl/sign/ed448"
)

// =============================================================================
// Private Key Encode/Parse Tests
// =============================================================================

func TestPrivateKeyPEMRoundTrip(t *testing.T) {
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}
	_, edPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate Ed25519 key: %v", err)
	}
	_, ed448Priv, err := ed448.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate Ed448 key: %v", err)
	}

	tests := []struct {
		name string
		priv any
	}{
		{"RSA", testRSAKey(t)},
		{"ECDSA P-256", ecPriv},
		{"Ed25519", edPriv},
		{"Ed448", ed448Priv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pemData, err := EncodePrivateKeyPEM(tt.priv, nil)
			if err != nil {
				t.Fatalf("EncodePrivateKeyPEM() error = %v", err)
			}

			signer, err := ParsePrivateKeyPEM(pemData, nil)
			if err != nil {
				t.Fatalf("ParsePrivateKeyPEM() error = %v", err)
			}

			// Re-encoding the parsed key must reproduce the original
			// block byte for byte.
			reEncoded, err := EncodePrivateKeyPEM(signer, nil)
			if err != nil {
				t.Fatalf("re-encode error = %v", err)
			}
			if !bytes.Equal(pemData, reEncoded) {
				t.Error("key changed across PEM round trip")
			}
		})
	}
}

func TestPrivateKeyPEMEncrypted(t *testing.T) {
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}
	passphrase := []byte("correct horse battery staple")

	pemData, err := EncodePrivateKeyPEM(ecPriv, passphrase)
	if err != nil {
		t.Fatalf("EncodePrivateKeyPEM() error = %v", err)
	}
	if !bytes.Contains(pemData, []byte("DEK-Info")) {
		t.Error("encrypted block is missing the DEK-Info headers")
	}

	if _, err := ParsePrivateKeyPEM(pemData, passphrase); err != nil {
		t.Errorf("parse with correct passphrase failed: %v", err)
	}
	if _, err := ParsePrivateKeyPEM(pemData, []byte("wrong")); err == nil {
		t.Error("parse accepted a wrong passphrase")
	}
	if _, err := ParsePrivateKeyPEM(pemData, nil); err == nil {
		t.Error("parse accepted an encrypted block without a passphrase")
	}
}

func TestParsePrivateKeyPEM_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"not PEM", "hello world"},
		{"wrong block type", "-----BEGIN WIDGET-----\naGVsbG8=\n-----END WIDGET-----\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePrivateKeyPEM([]byte(tt.data), nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

// =============================================================================
// File Loading Tests
// =============================================================================

func TestLoadPrivateKey(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}
	pemData, err := EncodePrivateKeyPEM(priv, nil)
	if err != nil {
		t.Fatalf("EncodePrivateKeyPEM() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, pemData, 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	signer, err := LoadPrivateKey(path, nil)
	if err != nil {
		t.Fatalf("LoadPrivateKey() error = %v", err)
	}
	if _, ok := signer.(*ecdsa.PrivateKey); !ok {
		t.Errorf("loaded key is %T, want *ecdsa.PrivateKey", signer)
	}

	if _, err := LoadPrivateKey(filepath.Join(t.TempDir(), "missing.pem"), nil); err == nil {
		t.Error("LoadPrivateKey() accepted a missing file")
	}
}

func TestLoadPublicKey(t *testing.T) {
	priv := testRSAKey(t)
	pemData, err := EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		t.Fatalf("EncodePublicKeyPEM() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "key.pub")
	if err := os.WriteFile(path, pemData, 0644); err != nil {
		t.Fatalf("failed to write public key file: %v", err)
	}

	pub, err := LoadPublicKey(path)
	if err != nil {
		t.Fatalf("LoadPublicKey() error = %v", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("loaded key is %T, want *rsa.PublicKey", pub)
	}
	if rsaPub.N.Cmp(priv.N) != 0 {
		t.Error("loaded modulus does not match")
	}
}

func TestLoadCertificate(t *testing.T) {
	priv := testRSAKey(t)
	cert := newTestCertificate(t, priv)

	path := filepath.Join(t.TempDir(), "cert.pem")
	if err := os.WriteFile(path, EncodeCertificatePEM(cert), 0644); err != nil {
		t.Fatalf("failed to write certificate file: %v", err)
	}

	loaded, err := LoadCertificate(path)
	if err != nil {
		t.Fatalf("LoadCertificate() error = %v", err)
	}
	if loaded.Subject.CommonName != cert.Subject.CommonName {
		t.Errorf("CommonName = %q, want %q",
			loaded.Subject.CommonName, cert.Subject.CommonName)
	}
}

func TestParseCertificatePEM_NoCertificateBlock(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate EC key: %v", err)
	}
	pemData, err := EncodePrivateKeyPEM(priv, nil)
	if err != nil {
		t.Fatalf("EncodePrivateKeyPEM() error = %v", err)
	}

	_, err = ParseCertificatePEM(pemData)
	if !errors.Is(err, ErrCertificateDecode) {
		t.Errorf("error = %v, want ErrCertificateDecode", err)
	}
}
