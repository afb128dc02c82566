//go:build cgo

// This file implements HSM-backed key handles via PKCS#11.
// An HSM key feeds the same acquisition path as a software key: it
// implements crypto.Signer and is wrapped with NewRSAPrivateKey.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/miekg/pkcs11"
)

// PKCS11Config holds PKCS#11 configuration for locating one key.
type PKCS11Config struct {
	// ModulePath is the path to the PKCS#11 module (.so/.dylib/.dll)
	ModulePath string

	// TokenLabel is the label of the token to use
	TokenLabel string

	// TokenSerial is the serial number of the token (alternative to TokenLabel)
	TokenSerial string

	// PIN is the user PIN for the token
	PIN string

	// KeyLabel is the label of the key to use
	KeyLabel string

	// KeyID is the CKA_ID of the key (hex encoded)
	KeyID string

	// SlotID is the slot ID (optional, use TokenLabel if not specified)
	SlotID *uint
}

// PKCS11Key is an HSM-resident signing handle. It implements crypto.Signer
// so it can be wrapped by NewRSAPrivateKey like any software key.
// The session is held for the lifetime of the handle and guarded by a
// mutex; PKCS#11 sessions are not safe for concurrent signing.
type PKCS11Key struct {
	mu      sync.Mutex
	ctx     *pkcs11.Ctx
	session pkcs11.SessionHandle
	handle  pkcs11.ObjectHandle
	pub     crypto.PublicKey
	closed  bool
}

var _ crypto.Signer = (*PKCS11Key)(nil)

// NewPKCS11Key opens the module, logs into the token and locates the
// private key described by cfg.
func NewPKCS11Key(cfg PKCS11Config) (*PKCS11Key, error) {
	if cfg.ModulePath == "" {
		return nil, fmt.Errorf("PKCS#11 module path is required")
	}
	if cfg.KeyLabel == "" && cfg.KeyID == "" {
		return nil, fmt.Errorf("at least one of key_label or key_id is required")
	}

	ctx := pkcs11.New(cfg.ModulePath)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load PKCS#11 module: %s", cfg.ModulePath)
	}

	if err := ctx.Initialize(); err != nil {
		if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_CRYPTOKI_ALREADY_INITIALIZED {
			ctx.Destroy()
			return nil, &ProviderError{Op: "pkcs11 initialize", Err: err}
		}
	}

	slot, err := findSlot(ctx, cfg)
	if err != nil {
		ctx.Destroy()
		return nil, err
	}

	session, err := ctx.OpenSession(slot, pkcs11.CKF_SERIAL_SESSION)
	if err != nil {
		ctx.Destroy()
		return nil, &ProviderError{Op: "pkcs11 open session", Err: err}
	}

	if err := ctx.Login(session, pkcs11.CKU_USER, cfg.PIN); err != nil {
		if p11err, ok := err.(pkcs11.Error); !ok || p11err != pkcs11.CKR_USER_ALREADY_LOGGED_IN {
			_ = ctx.CloseSession(session)
			ctx.Destroy()
			return nil, &ProviderError{Op: "pkcs11 login", Err: err}
		}
	}

	handle, err := findPrivateKey(ctx, session, cfg)
	if err != nil {
		_ = ctx.CloseSession(session)
		ctx.Destroy()
		return nil, err
	}

	pub, err := extractPublicKey(ctx, session, handle)
	if err != nil {
		_ = ctx.CloseSession(session)
		ctx.Destroy()
		return nil, err
	}

	return &PKCS11Key{
		ctx:     ctx,
		session: session,
		handle:  handle,
		pub:     pub,
	}, nil
}

// Public returns the public key extracted from the token.
func (k *PKCS11Key) Public() crypto.PublicKey {
	return k.pub
}

// Sign signs the digest with the HSM key. For RSA keys the mechanism is
// CKM_RSA_PKCS with a DigestInfo prefix, which yields exactly the
// PKCS#1 v1.5 signatures produced by rsa.SignPKCS1v15. For EC keys the
// raw r||s output is converted to ASN.1 DER.
func (k *PKCS11Key) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, fmt.Errorf("pkcs11 key is closed")
	}

	var mech *pkcs11.Mechanism
	dataToSign := digest

	switch k.pub.(type) {
	case *rsa.PublicKey:
		mech = pkcs11.NewMechanism(pkcs11.CKM_RSA_PKCS, nil)
		var err error
		dataToSign, err = addDigestInfoPrefix(digest, opts.HashFunc())
		if err != nil {
			return nil, err
		}
	case *ecdsa.PublicKey:
		mech = pkcs11.NewMechanism(pkcs11.CKM_ECDSA, nil)
	default:
		return nil, fmt.Errorf("unsupported key type for signing: %T", k.pub)
	}

	if err := k.ctx.SignInit(k.session, []*pkcs11.Mechanism{mech}, k.handle); err != nil {
		return nil, &ProviderError{Op: "pkcs11 sign init", Err: err}
	}

	sig, err := k.ctx.Sign(k.session, dataToSign)
	if err != nil {
		return nil, &ProviderError{Op: "pkcs11 sign", Err: err}
	}

	if _, ok := k.pub.(*ecdsa.PublicKey); ok {
		sig, err = ecdsaRawToDER(sig)
		if err != nil {
			return nil, err
		}
	}

	return sig, nil
}

// Close logs out and releases the session. The handle must not be used
// after Close.
func (k *PKCS11Key) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	_ = k.ctx.Logout(k.session)
	_ = k.ctx.CloseSession(k.session)
	k.ctx.Destroy()
	return nil
}

// digestInfoPrefixes holds the DigestInfo prefixes for PKCS#1 v1.5
// signatures (RFC 8017, section 9.2).
var digestInfoPrefixes = map[crypto.Hash][]byte{
	crypto.SHA256: {0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20},
	crypto.SHA384: {0x30, 0x41, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00, 0x04, 0x30},
	crypto.SHA512: {0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40},
}

// addDigestInfoPrefix prepends the DigestInfo ASN.1 prefix for PKCS#1
// v1.5 RSA signatures. An unknown hash is an error rather than a silent
// pass-through; a signature over a bare digest would never verify.
func addDigestInfoPrefix(digest []byte, hash crypto.Hash) ([]byte, error) {
	prefix, ok := digestInfoPrefixes[hash]
	if !ok {
		return nil, fmt.Errorf("no DigestInfo prefix for hash %v", hash)
	}
	result := make([]byte, len(prefix)+len(digest))
	copy(result, prefix)
	copy(result[len(prefix):], digest)
	return result, nil
}

// ecdsaRawToDER converts a raw ECDSA signature (r||s) to ASN.1 DER.
func ecdsaRawToDER(rawSig []byte) ([]byte, error) {
	if len(rawSig)%2 != 0 {
		return nil, fmt.Errorf("invalid ECDSA signature length: %d", len(rawSig))
	}

	n := len(rawSig) / 2
	r := new(big.Int).SetBytes(rawSig[:n])
	s := new(big.Int).SetBytes(rawSig[n:])

	return asn1.Marshal(struct {
		R, S *big.Int
	}{r, s})
}

// findSlot locates the slot holding the configured token.
func findSlot(ctx *pkcs11.Ctx, cfg PKCS11Config) (uint, error) {
	if cfg.SlotID != nil {
		return *cfg.SlotID, nil
	}

	slots, err := ctx.GetSlotList(true)
	if err != nil {
		return 0, &ProviderError{Op: "pkcs11 slot list", Err: err}
	}
	if len(slots) == 0 {
		return 0, fmt.Errorf("no slots with tokens found")
	}

	for _, slot := range slots {
		info, err := ctx.GetTokenInfo(slot)
		if err != nil {
			continue
		}
		if cfg.TokenLabel != "" && info.Label == cfg.TokenLabel {
			return slot, nil
		}
		if cfg.TokenSerial != "" && info.SerialNumber == cfg.TokenSerial {
			return slot, nil
		}
	}

	if cfg.TokenLabel != "" {
		return 0, fmt.Errorf("token with label %q not found", cfg.TokenLabel)
	}
	if cfg.TokenSerial != "" {
		return 0, fmt.Errorf("token with serial %q not found", cfg.TokenSerial)
	}

	return slots[0], nil
}

// findPrivateKey locates the private key object described by cfg.
func findPrivateKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, cfg PKCS11Config) (pkcs11.ObjectHandle, error) {
	template := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_PRIVATE_KEY),
	}

	if cfg.KeyLabel != "" {
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_LABEL, cfg.KeyLabel))
	}
	if cfg.KeyID != "" {
		id, err := hex.DecodeString(cfg.KeyID)
		if err != nil {
			return 0, fmt.Errorf("invalid key_id hex: %w", err)
		}
		template = append(template, pkcs11.NewAttribute(pkcs11.CKA_ID, id))
	}

	if err := ctx.FindObjectsInit(session, template); err != nil {
		return 0, &ProviderError{Op: "pkcs11 find init", Err: err}
	}
	defer func() { _ = ctx.FindObjectsFinal(session) }()

	objs, _, err := ctx.FindObjects(session, 2)
	if err != nil {
		return 0, &ProviderError{Op: "pkcs11 find", Err: err}
	}

	if len(objs) == 0 {
		return 0, fmt.Errorf("private key not found")
	}
	if len(objs) > 1 {
		return 0, fmt.Errorf("multiple keys found, please specify both key_label and key_id")
	}

	return objs[0], nil
}

// extractPublicKey reads the public half of the key from the token.
func extractPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, handle pkcs11.ObjectHandle) (crypto.PublicKey, error) {
	attrs, err := ctx.GetAttributeValue(session, handle, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_KEY_TYPE, nil),
	})
	if err != nil {
		return nil, &ProviderError{Op: "pkcs11 get key type", Err: err}
	}

	switch bytesToUint(attrs[0].Value) {
	case pkcs11.CKK_RSA:
		return extractRSAPublicKey(ctx, session, handle)
	case pkcs11.CKK_EC:
		return extractECPublicKey(ctx, session, handle)
	default:
		return nil, fmt.Errorf("unsupported key type: 0x%X", bytesToUint(attrs[0].Value))
	}
}

// findPublicKeyForPrivate finds the public key object sharing the
// private key's CKA_ID.
func findPublicKeyForPrivate(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, priv pkcs11.ObjectHandle) (pkcs11.ObjectHandle, error) {
	attrs, err := ctx.GetAttributeValue(session, priv, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_ID, nil),
	})
	if err != nil || len(attrs[0].Value) == 0 {
		return 0, fmt.Errorf("private key has no CKA_ID")
	}

	template := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_PUBLIC_KEY),
		pkcs11.NewAttribute(pkcs11.CKA_ID, attrs[0].Value),
	}

	if err := ctx.FindObjectsInit(session, template); err != nil {
		return 0, &ProviderError{Op: "pkcs11 find init", Err: err}
	}
	defer func() { _ = ctx.FindObjectsFinal(session) }()

	objs, _, err := ctx.FindObjects(session, 1)
	if err != nil {
		return 0, &ProviderError{Op: "pkcs11 find", Err: err}
	}
	if len(objs) == 0 {
		return 0, fmt.Errorf("public key not found for private key")
	}

	return objs[0], nil
}

func extractRSAPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, priv pkcs11.ObjectHandle) (crypto.PublicKey, error) {
	pubHandle, err := findPublicKeyForPrivate(ctx, session, priv)
	if err != nil {
		return nil, err
	}

	attrs, err := ctx.GetAttributeValue(session, pubHandle, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_MODULUS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_PUBLIC_EXPONENT, nil),
	})
	if err != nil {
		return nil, &ProviderError{Op: "pkcs11 get RSA attributes", Err: err}
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(attrs[0].Value),
		// RSA public exponent is a big-endian integer, not CK_ULONG
		E: int(new(big.Int).SetBytes(attrs[1].Value).Int64()),
	}, nil
}

func extractECPublicKey(ctx *pkcs11.Ctx, session pkcs11.SessionHandle, priv pkcs11.ObjectHandle) (crypto.PublicKey, error) {
	pubHandle, err := findPublicKeyForPrivate(ctx, session, priv)
	if err != nil {
		return nil, err
	}

	attrs, err := ctx.GetAttributeValue(session, pubHandle, []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_EC_PARAMS, nil),
		pkcs11.NewAttribute(pkcs11.CKA_EC_POINT, nil),
	})
	if err != nil {
		return nil, &ProviderError{Op: "pkcs11 get EC attributes", Err: err}
	}

	curve, err := parseECParams(attrs[0].Value)
	if err != nil {
		return nil, err
	}

	// CKA_EC_POINT is a DER OCTET STRING wrapping the uncompressed point
	var point []byte
	if _, err := asn1.Unmarshal(attrs[1].Value, &point); err != nil {
		point = attrs[1].Value
	}

	x, y := elliptic.Unmarshal(curve, point) //nolint:staticcheck
	if x == nil {
		return nil, fmt.Errorf("failed to parse EC point")
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

// Named curve OIDs for CKA_EC_PARAMS.
var (
	oidP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	oidP384 = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
	oidP521 = asn1.ObjectIdentifier{1, 3, 132, 0, 35}
)

func parseECParams(params []byte) (elliptic.Curve, error) {
	var oid asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(params, &oid); err != nil {
		return nil, fmt.Errorf("failed to parse EC params: %w", err)
	}

	switch {
	case oid.Equal(oidP256):
		return elliptic.P256(), nil
	case oid.Equal(oidP384):
		return elliptic.P384(), nil
	case oid.Equal(oidP521):
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("unsupported EC curve: %v", oid)
	}
}

func bytesToUint(b []byte) uint {
	var result uint
	for i := len(b) - 1; i >= 0; i-- {
		result = result<<8 | uint(b[i])
	}
	return result
}
