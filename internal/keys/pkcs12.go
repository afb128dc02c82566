package keys

import (
	"crypto"
	"crypto/rsa"
	"errors"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// RSAKeysFromPKCS12 imports a PKCS#12 archive and returns the public and
// private halves of its single identity entry. The public key is taken
// from the embedded certificate via the same trust evaluation as
// RSAPublicKeyFromCertificate.
//
// Failure modes:
//   - the import call itself fails (wrong passphrase, malformed archive):
//     *ProviderError
//   - the archive imports but holds no identity: ErrNoIdentity
//   - an identity is present but its key or certificate cannot be used:
//     ErrIncompleteIdentity
//
// The returned pair is transient: callers keep the two keys and discard
// any notion of the archive itself.
func RSAKeysFromPKCS12(data []byte, passphrase string) (*RSAPublicKey, *RSAPrivateKey, error) {
	priv, cert, _, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, nil, &ProviderError{Op: "pkcs12 import", Err: err}
		}
		// An archive that decodes as a trust store is structurally valid
		// but carries certificates only: that is an absent identity, not
		// a provider failure.
		if _, tsErr := pkcs12.DecodeTrustStore(data, passphrase); tsErr == nil {
			return nil, nil, ErrNoIdentity
		}
		return nil, nil, &ProviderError{Op: "pkcs12 import", Err: err}
	}

	if priv == nil || cert == nil {
		return nil, nil, ErrIncompleteIdentity
	}

	signer, ok := priv.(crypto.Signer)
	if !ok {
		return nil, nil, ErrIncompleteIdentity
	}
	if _, ok := signer.Public().(*rsa.PublicKey); !ok {
		return nil, nil, ErrIncompleteIdentity
	}

	pub, err := RSAPublicKeyFromCertificate(cert)
	if err != nil {
		return nil, nil, err
	}

	return pub, NewRSAPrivateKey(signer), nil
}
