//go:build !cgo

// This file provides stub implementations when CGO is not available.
// HSM support via PKCS#11 requires CGO.
package keys

import (
	"crypto"
	"fmt"
	"io"
)

// PKCS11Config holds PKCS#11 configuration for locating one key.
type PKCS11Config struct {
	ModulePath  string
	TokenLabel  string
	TokenSerial string
	PIN         string
	KeyLabel    string
	KeyID       string
	SlotID      *uint
}

// PKCS11Key is an HSM-resident signing handle.
// This stub is used when CGO is not available.
type PKCS11Key struct{}

// errNoCGO is returned when PKCS#11 operations are attempted without CGO.
var errNoCGO = fmt.Errorf("HSM support requires CGO (build with CGO_ENABLED=1)")

// NewPKCS11Key creates a new HSM-backed key handle.
// This stub returns an error when CGO is not available.
func NewPKCS11Key(_ PKCS11Config) (*PKCS11Key, error) {
	return nil, errNoCGO
}

// Public returns the public key.
func (k *PKCS11Key) Public() crypto.PublicKey {
	return nil
}

// Sign signs the digest using the HSM.
func (k *PKCS11Key) Sign(_ io.Reader, _ []byte, _ crypto.SignerOpts) ([]byte, error) {
	return nil, errNoCGO
}

// Close releases the session.
func (k *PKCS11Key) Close() error {
	return nil
}
