// Package keys provides key material acquisition for token signing and
// verification. Key handles are obtained from raw provider keys, from
// X.509 certificates (DER or PEM), from PKCS#12 identity bundles, or from
// a PKCS#11 HSM. All handles are immutable once constructed and safe for
// concurrent use.
package keys

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"
)

// RSAPublicKey wraps an RSA public key handle used for verification.
type RSAPublicKey struct {
	pub *rsa.PublicKey
}

// NewRSAPublicKey wraps an already-available public key handle.
// No validation is performed.
func NewRSAPublicKey(pub *rsa.PublicKey) *RSAPublicKey {
	return &RSAPublicKey{pub: pub}
}

// Public returns the underlying public key handle.
func (k *RSAPublicKey) Public() *rsa.PublicKey {
	return k.pub
}

// BlockSize returns the RSA modulus size in bytes. Every signature
// produced or verified with this key has exactly this length.
func (k *RSAPublicKey) BlockSize() int {
	return k.pub.Size()
}

// RSAPrivateKey wraps an opaque RSA signing handle. The handle is either
// a software *rsa.PrivateKey or an HSM-backed key; both are driven through
// crypto.Signer so the signing strategy does not care which.
type RSAPrivateKey struct {
	signer crypto.Signer
}

// NewRSAPrivateKey wraps an already-available signing handle.
// No validation is performed.
func NewRSAPrivateKey(handle crypto.Signer) *RSAPrivateKey {
	return &RSAPrivateKey{signer: handle}
}

// Sign invokes the provider's raw RSA sign primitive.
func (k *RSAPrivateKey) Sign(random io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return k.signer.Sign(random, digest, opts)
}

// Public returns the public half of the key handle.
func (k *RSAPrivateKey) Public() crypto.PublicKey {
	return k.signer.Public()
}

// PublicKey returns the public half wrapped as an RSAPublicKey, or an
// error if the handle is not RSA.
func (k *RSAPrivateKey) PublicKey() (*RSAPublicKey, error) {
	pub, ok := k.signer.Public().(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("keys: handle is not an RSA key (got %T)", k.signer.Public())
	}
	return NewRSAPublicKey(pub), nil
}

// BlockSize returns the RSA modulus size in bytes, or 0 if the handle
// is not RSA.
func (k *RSAPrivateKey) BlockSize() int {
	if pub, ok := k.signer.Public().(*rsa.PublicKey); ok {
		return pub.Size()
	}
	return 0
}

// RSAPublicKeyFromCertificate extracts the RSA public key from a
// certificate via a minimal single-certificate trust evaluation: the
// SubjectPublicKeyInfo is re-parsed from the raw certificate bytes, with
// no chain building and no trust anchors. All certificate-based
// acquisition paths funnel through here so the extraction policy and its
// failure modes are defined once.
func RSAPublicKeyFromCertificate(cert *x509.Certificate) (*RSAPublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(cert.RawSubjectPublicKeyInfo)
	if err != nil {
		return nil, &ProviderError{Op: "trust evaluation", Err: err}
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: subject key is %T", ErrPublicKeyNotFound, pub)
	}

	return NewRSAPublicKey(rsaPub), nil
}

// RSAPublicKeyFromCertificateDER parses a DER-encoded certificate and
// extracts its RSA public key.
func RSAPublicKeyFromCertificateDER(der []byte) (*RSAPublicKey, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateDecode, err)
	}
	return RSAPublicKeyFromCertificate(cert)
}
