package main

import (
	"bytes"
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	dir, err := os.MkdirTemp("", "jwt-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return &testContext{t: t, tempDir: dir}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name, content string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// writeKeyPEM writes a private key to a PEM file in the temp directory.
func (tc *testContext) writeKeyPEM(name string, key stdcrypto.Signer) string {
	tc.t.Helper()
	pemData, err := keys.EncodePrivateKeyPEM(key, nil)
	if err != nil {
		tc.t.Fatalf("Failed to encode private key: %v", err)
	}
	path := tc.path(name)
	if err := os.WriteFile(path, pemData, 0600); err != nil {
		tc.t.Fatalf("Failed to write key: %v", err)
	}
	return path
}

// writePublicPEM writes a public key to a PEM file in the temp directory.
func (tc *testContext) writePublicPEM(name string, pub stdcrypto.PublicKey) string {
	tc.t.Helper()
	pemData, err := keys.EncodePublicKeyPEM(pub)
	if err != nil {
		tc.t.Fatalf("Failed to encode public key: %v", err)
	}
	return tc.writeFile(name, string(pemData))
}

// writeCertPEM writes a certificate to a PEM file in the temp directory.
func (tc *testContext) writeCertPEM(name string, cert *x509.Certificate) string {
	tc.t.Helper()
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})
	return tc.writeFile(name, string(pemData))
}

// writeSecretB64 writes a base64-encoded HMAC secret file.
func (tc *testContext) writeSecretB64(name string, secret []byte) string {
	tc.t.Helper()
	return tc.writeFile(name, base64.StdEncoding.EncodeToString(secret)+"\n")
}

// generateECDSAKeyPair generates an ECDSA P-256 key pair.
func generateECDSAKeyPair(t *testing.T) (*ecdsa.PrivateKey, *ecdsa.PublicKey) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate ECDSA key: %v", err)
	}
	return priv, &priv.PublicKey
}

var (
	cachedRSAOnce sync.Once
	cachedRSAPriv *rsa.PrivateKey
	cachedRSAErr  error
)

// generateRSAKeyPair returns a shared RSA-2048 key pair. Generation is
// cached because RSA keygen dominates test runtime.
func generateRSAKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	cachedRSAOnce.Do(func() {
		cachedRSAPriv, cachedRSAErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	if cachedRSAErr != nil {
		t.Fatalf("Failed to generate RSA key: %v", cachedRSAErr)
	}
	return cachedRSAPriv, &cachedRSAPriv.PublicKey
}

// generateSelfSignedCert generates a self-signed certificate.
func generateSelfSignedCert(t *testing.T, priv stdcrypto.Signer) *x509.Certificate {
	t.Helper()

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("Failed to generate serial number: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   "Test Token Signer",
			Organization: []string{"Test Org"},
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, priv.Public(), priv)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}

	return cert
}

// =============================================================================
// Flag Reset Helpers
// =============================================================================
// Cobra retains flag values between test runs, so every test that goes
// through executeCommand must reset the flags it touches first.

func resetGlobalFlags() {
	auditLogPath = ""
}

func resetSignFlags() {
	signKeyFlags = keySourceFlags{}
	signClaimFlags = claimFlags{}
	signAlgorithm = ""
	signKid = ""
	signOutput = ""
	signProfile = ""
	signProfileDir = ""
	signVars = nil
}

func resetVerifyFlags() {
	verifyKeyFlags = verifierSourceFlags{}
	verifyIss = ""
	verifyAud = ""
	verifySub = ""
}

func resetDecodeFlags() {
	decodeJSON = false
}

func resetKeyFlags() {
	keyGenAlgorithm = "ES256"
	keyGenOutput = ""
	keyGenPassphrase = ""
	keyGenRSABits = 2048
	keyGenEd448 = false

	keyPubKey = ""
	keyPubOut = ""
	keyPubPassphrase = ""

	keyInspectPassphrase = ""
}

func resetHMACFlags() {
	hmacGenLength = keys.DefaultHMACKeyLength
	hmacGenOut = ""

	hmacDerivePassEnv = ""
	hmacDeriveSalt = ""
	hmacDeriveIterations = keys.DefaultPBKDF2Iterations
	hmacDeriveLength = keys.DefaultHMACKeyLength
	hmacDeriveOut = ""
}

func resetCWTFlags() {
	cwtSignKeyFlags = keySourceFlags{}
	cwtSignClaimFlags = claimFlags{}
	cwtSignAlgorithm = ""
	cwtSignKid = ""
	cwtSignOutput = ""

	cwtVerifyKeyFlags = verifierSourceFlags{}
}

func resetProfileFlags() {
	profileDir = ""
}

func resetAuditFlags() {
	auditLogFile = ""
	auditTailNum = 10
	auditShowJSON = false
}

func resetP12Flags() {
	p12Passphrase = ""
	p12OutPub = ""
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// assertFileExists verifies that a file exists at the given path.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file %s does not exist", path)
	}
}

// assertFileNotEmpty verifies that a file exists and is not empty.
func assertFileNotEmpty(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if len(data) == 0 {
		t.Errorf("file %s is empty", path)
	}
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertError fails the test if err is nil.
func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
