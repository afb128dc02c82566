package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/cloudflare/circl/sign/ed448"
)

// ParseCertificatePEM parses the first CERTIFICATE block from PEM data.
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		data = rest

		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCertificateDecode, err)
		}
		return cert, nil
	}
	return nil, fmt.Errorf("%w: no CERTIFICATE block", ErrCertificateDecode)
}

// LoadCertificate loads a certificate from a PEM file.
func LoadCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}
	return ParseCertificatePEM(data)
}

// ParsePrivateKeyPEM parses a private key from PEM data.
// Supported block types: PKCS#8 "PRIVATE KEY", "RSA PRIVATE KEY" (PKCS#1)
// and "EC PRIVATE KEY" (SEC 1). Encrypted blocks are decrypted with the
// given passphrase.
func ParsePrivateKeyPEM(data, passphrase []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	keyBytes := block.Bytes
	if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("key is encrypted but no passphrase provided")
		}
		var err error
		keyBytes, err = x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, &ProviderError{Op: "key decrypt", Err: err}
		}
	}

	switch block.Type {
	case "PRIVATE KEY":
		priv, err := x509.ParsePKCS8PrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 key: %w", err)
		}
		signer, ok := priv.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type: %T", priv)
		}
		return signer, nil

	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 key: %w", err)
		}
		return priv, nil

	case "EC PRIVATE KEY":
		priv, err := x509.ParseECPrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse EC key: %w", err)
		}
		return priv, nil

	case "ED448 PRIVATE KEY":
		// Ed448 has no PKCS#8 support in crypto/x509; the raw private key
		// bytes are stored directly in the block.
		if len(keyBytes) != ed448.PrivateKeySize {
			return nil, fmt.Errorf("invalid Ed448 key length: %d", len(keyBytes))
		}
		return ed448.PrivateKey(keyBytes), nil

	default:
		return nil, fmt.Errorf("unsupported PEM block type: %s", block.Type)
	}
}

// LoadPrivateKey loads a private key from a PEM file.
func LoadPrivateKey(path string, passphrase []byte) (crypto.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return ParsePrivateKeyPEM(data, passphrase)
}

// ParsePublicKeyPEM parses a PKIX "PUBLIC KEY" block from PEM data.
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("unexpected PEM block type: %s", block.Type)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return pub, nil
}

// LoadPublicKey loads a PKIX public key from a PEM file.
func LoadPublicKey(path string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	return ParsePublicKeyPEM(data)
}

// EncodePrivateKeyPEM encodes a private key as a PKCS#8 PEM block.
// If passphrase is non-empty the block is encrypted.
func EncodePrivateKeyPEM(priv crypto.PrivateKey, passphrase []byte) ([]byte, error) {
	var block *pem.Block

	if k, ok := priv.(ed448.PrivateKey); ok {
		// Ed448 has no PKCS#8 support in crypto/x509.
		block = &pem.Block{Type: "ED448 PRIVATE KEY", Bytes: k}
	} else {
		keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}
		block = &pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes}
	}

	if len(passphrase) > 0 {
		//nolint:staticcheck // Deprecated but needed for passphrase-protected PEM
		encrypted, err := x509.EncryptPEMBlock(rand.Reader, block.Type, block.Bytes, passphrase, x509.PEMCipherAES256)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt key: %w", err)
		}
		block = encrypted
	}

	return pem.EncodeToMemory(block), nil
}

// EncodePublicKeyPEM encodes a public key as a PKIX PEM block.
func EncodePublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// EncodeCertificatePEM encodes a certificate as a PEM block.
func EncodeCertificatePEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}
