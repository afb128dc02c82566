// Package service provides business logic for the REST API.
package service

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"

	jwtcrypto "github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// KeyConfig describes one signing key in the server configuration.
// Exactly one source (pem, pkcs12, secret_env, secret_file) must be set.
type KeyConfig struct {
	// ID is the key identifier, referenced by profiles and emitted as the
	// kid header.
	ID string `yaml:"id"`

	// Algorithm is the JOSE algorithm the key signs with.
	Algorithm string `yaml:"algorithm"`

	// PEM is the path to a private key PEM file.
	PEM string `yaml:"pem,omitempty"`

	// PKCS12 is the path to a PKCS#12 archive holding an RSA identity.
	PKCS12 string `yaml:"pkcs12,omitempty"`

	// SecretEnv names an environment variable holding a base64-encoded
	// HMAC secret.
	SecretEnv string `yaml:"secret_env,omitempty"`

	// SecretFile is the path to a file holding a raw HMAC secret.
	SecretFile string `yaml:"secret_file,omitempty"`

	// PassphraseEnv names an environment variable holding the passphrase
	// for an encrypted PEM or PKCS#12 source.
	PassphraseEnv string `yaml:"passphrase_env,omitempty"`
}

// Key is a loaded signing key with its ready-to-use strategies.
type Key struct {
	ID        string
	Algorithm jwtcrypto.Algorithm
	Signer    jwtcrypto.Signer
	Verifier  jwtcrypto.Verifier

	// Public is nil for HMAC keys; symmetric secrets never leave the set.
	Public any
}

// KeySet holds the server's named signing keys.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]*Key
}

// NewKeySet creates an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]*Key)}
}

// LoadKeySet loads all configured keys.
func LoadKeySet(configs []KeyConfig) (*KeySet, error) {
	ks := NewKeySet()
	for i := range configs {
		key, err := LoadKey(&configs[i])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", configs[i].ID, err)
		}
		ks.Add(key)
	}
	return ks, nil
}

// LoadKey loads a single key from its configuration.
func LoadKey(cfg *KeyConfig) (*Key, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("key id is required")
	}

	alg, err := jwtcrypto.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	passphrase := []byte(nil)
	if cfg.PassphraseEnv != "" {
		passphrase = []byte(os.Getenv(cfg.PassphraseEnv))
	}

	switch {
	case cfg.SecretEnv != "" || cfg.SecretFile != "":
		if !alg.IsHMAC() {
			return nil, fmt.Errorf("secret source requires an HMAC algorithm, got %s", alg)
		}
		secret, err := loadSecret(cfg)
		if err != nil {
			return nil, err
		}
		signer, err := jwtcrypto.NewSigner(alg, secret)
		if err != nil {
			return nil, err
		}
		verifier, err := jwtcrypto.NewVerifier(alg, secret)
		if err != nil {
			return nil, err
		}
		return &Key{ID: cfg.ID, Algorithm: alg, Signer: signer, Verifier: verifier}, nil

	case cfg.PKCS12 != "":
		if !alg.IsRSA() {
			return nil, fmt.Errorf("PKCS#12 source requires an RSA algorithm, got %s", alg)
		}
		data, err := os.ReadFile(cfg.PKCS12)
		if err != nil {
			return nil, fmt.Errorf("failed to read PKCS#12 archive: %w", err)
		}
		pub, priv, err := keys.RSAKeysFromPKCS12(data, string(passphrase))
		if err != nil {
			return nil, err
		}
		signer, err := jwtcrypto.NewSigner(alg, priv)
		if err != nil {
			return nil, err
		}
		verifier, err := jwtcrypto.VerifierForPublicKey(alg, pub)
		if err != nil {
			return nil, err
		}
		return &Key{ID: cfg.ID, Algorithm: alg, Signer: signer, Verifier: verifier, Public: pub.Public()}, nil

	case cfg.PEM != "":
		handle, err := keys.LoadPrivateKey(cfg.PEM, passphrase)
		if err != nil {
			return nil, err
		}
		signer, err := jwtcrypto.NewSigner(alg, handle)
		if err != nil {
			return nil, err
		}
		pub := handle.Public()
		verifier, err := jwtcrypto.VerifierForPublicKey(alg, pub)
		if err != nil {
			return nil, err
		}
		return &Key{ID: cfg.ID, Algorithm: alg, Signer: signer, Verifier: verifier, Public: pub}, nil

	default:
		return nil, fmt.Errorf("key has no source (pem, pkcs12, secret_env or secret_file)")
	}
}

// loadSecret resolves an HMAC secret from its configured source.
func loadSecret(cfg *KeyConfig) ([]byte, error) {
	if cfg.SecretEnv != "" {
		raw := os.Getenv(cfg.SecretEnv)
		if raw == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.SecretEnv)
		}
		secret, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("secret in %s is not valid base64: %w", cfg.SecretEnv, err)
		}
		return secret, nil
	}

	data, err := os.ReadFile(cfg.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	secret := []byte(strings.TrimSpace(string(data)))
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret file %s is empty", cfg.SecretFile)
	}
	return secret, nil
}

// Add registers a key in the set.
func (ks *KeySet) Add(key *Key) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[key.ID] = key
}

// Get returns the named key.
func (ks *KeySet) Get(id string) (*Key, bool) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.keys[id]
	return key, ok
}

// IDs returns the key identifiers in the set.
func (ks *KeySet) IDs() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	ids := make([]string, 0, len(ks.keys))
	for id := range ks.keys {
		ids = append(ids, id)
	}
	return ids
}

// Verifiers returns the verification strategies of all keys.
func (ks *KeySet) Verifiers() []jwtcrypto.Verifier {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := make([]jwtcrypto.Verifier, 0, len(ks.keys))
	for _, key := range ks.keys {
		out = append(out, key.Verifier)
	}
	return out
}

// PublicKeys returns the asymmetric keys of the set, keyed by key ID.
// HMAC keys are excluded.
func (ks *KeySet) PublicKeys() map[string]any {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := make(map[string]any)
	for id, key := range ks.keys {
		if key.Public != nil {
			out[id] = key.Public
		}
	}
	return out
}
