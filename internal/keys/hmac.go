package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Default PBKDF2 parameters for HMAC key derivation.
const (
	DefaultPBKDF2Iterations = 600000
	DefaultHMACKeyLength    = 32
	DefaultSaltLength       = 16
)

// HMACKeyFromPassphrase derives an HMAC key from a passphrase using
// PBKDF2-HMAC-SHA256. The same (passphrase, salt, iterations, length)
// tuple always derives the same key, so both token producer and consumer
// can reconstruct it independently.
func HMACKeyFromPassphrase(passphrase, salt []byte, iterations, length int) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("keys: passphrase must not be empty")
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("keys: salt must not be empty")
	}
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	if length <= 0 {
		length = DefaultHMACKeyLength
	}
	return pbkdf2.Key(passphrase, salt, iterations, length, sha256.New), nil
}

// GenerateHMACKey generates a random HMAC key of the given length.
func GenerateHMACKey(length int) ([]byte, error) {
	if length <= 0 {
		length = DefaultHMACKeyLength
	}
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, &ProviderError{Op: "random", Err: err}
	}
	return key, nil
}

// GenerateSalt generates a random PBKDF2 salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, DefaultSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, &ProviderError{Op: "random", Err: err}
	}
	return salt, nil
}
