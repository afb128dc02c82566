// This file exposes key acquisition from internal/keys.
package jwt

import (
	stdcrypto "crypto"
	"crypto/x509"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// Re-export key material types
type (
	// RSAPublicKey is the verification half of an RSA key.
	RSAPublicKey = keys.RSAPublicKey

	// RSAPrivateKey is a handle-backed RSA signing key.
	RSAPrivateKey = keys.RSAPrivateKey

	// ProviderError reports a failed provider operation.
	ProviderError = keys.ProviderError

	// HSMConfig holds PKCS#11 HSM configuration.
	HSMConfig = keys.HSMConfig

	// PKCS11Config holds the parameters to open one HSM key.
	PKCS11Config = keys.PKCS11Config

	// PKCS11Key is a private key held in an HSM.
	PKCS11Key = keys.PKCS11Key
)

// Sentinel errors surfaced by key acquisition.
var (
	ErrPublicKeyNotFound  = keys.ErrPublicKeyNotFound
	ErrCertificateDecode  = keys.ErrCertificateDecode
	ErrNoIdentity         = keys.ErrNoIdentity
	ErrIncompleteIdentity = keys.ErrIncompleteIdentity
)

// RSAPublicKeyFromCertificateDER extracts the RSA verification key
// from a DER-encoded certificate.
func RSAPublicKeyFromCertificateDER(der []byte) (*RSAPublicKey, error) {
	return keys.RSAPublicKeyFromCertificateDER(der)
}

// RSAPublicKeyFromCertificate extracts the RSA verification key from a
// parsed certificate.
func RSAPublicKeyFromCertificate(cert *x509.Certificate) (*RSAPublicKey, error) {
	return keys.RSAPublicKeyFromCertificate(cert)
}

// RSAKeysFromPKCS12 opens a PKCS#12 archive and returns the RSA
// identity it holds.
func RSAKeysFromPKCS12(data []byte, passphrase string) (*RSAPublicKey, *RSAPrivateKey, error) {
	return keys.RSAKeysFromPKCS12(data, passphrase)
}

// NewRSAPrivateKey wraps a signing handle as an RSA private key.
func NewRSAPrivateKey(handle stdcrypto.Signer) *RSAPrivateKey {
	return keys.NewRSAPrivateKey(handle)
}

// LoadPrivateKey loads a private key from a PEM file.
func LoadPrivateKey(path string, passphrase []byte) (stdcrypto.Signer, error) {
	return keys.LoadPrivateKey(path, passphrase)
}

// LoadPublicKey loads a public key from a PEM file.
func LoadPublicKey(path string) (stdcrypto.PublicKey, error) {
	return keys.LoadPublicKey(path)
}

// LoadCertificate loads a certificate from a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	return keys.LoadCertificate(path)
}

// HMACKeyFromPassphrase derives an HMAC key from a passphrase using
// PBKDF2-HMAC-SHA256.
func HMACKeyFromPassphrase(passphrase, salt []byte, iterations, length int) ([]byte, error) {
	return keys.HMACKeyFromPassphrase(passphrase, salt, iterations, length)
}

// GenerateHMACKey generates a random HMAC secret.
func GenerateHMACKey(length int) ([]byte, error) {
	return keys.GenerateHMACKey(length)
}

// LoadHSMConfig loads HSM configuration from a file.
func LoadHSMConfig(path string) (*HSMConfig, error) {
	return keys.LoadHSMConfig(path)
}

// NewPKCS11Key opens a private key held in an HSM.
func NewPKCS11Key(cfg PKCS11Config) (*PKCS11Key, error) {
	return keys.NewPKCS11Key(cfg)
}
