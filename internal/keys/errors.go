package keys

import (
	"errors"
	"fmt"
)

// Sentinel errors for key acquisition failures.
// A missing or invalid key is not recoverable here; callers must abort
// signer/verifier setup when one of these is returned.
var (
	// ErrPublicKeyNotFound is returned when a certificate evaluates cleanly
	// but does not yield a usable RSA public key.
	ErrPublicKeyNotFound = errors.New("keys: no public key found in certificate")

	// ErrCertificateDecode is returned when input bytes are not a valid
	// DER-encoded X.509 certificate.
	ErrCertificateDecode = errors.New("keys: failed to decode DER certificate")

	// ErrNoIdentity is returned when a PKCS#12 archive imports successfully
	// but contains no identity (no private key entry).
	ErrNoIdentity = errors.New("keys: no identity found in PKCS#12 archive")

	// ErrIncompleteIdentity is returned when a PKCS#12 identity is present
	// but its private key or certificate cannot be extracted.
	ErrIncompleteIdentity = errors.New("keys: incomplete identity in PKCS#12 archive")
)

// ProviderError reports a non-success status from the underlying
// cryptographic provider (trust evaluation, PKCS#12 import, raw sign).
// Provider failures are not transient and are never retried.
type ProviderError struct {
	// Op is the provider operation that failed.
	Op string

	// Err is the status returned by the provider.
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("keys: provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
