package main

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/ed448"

	"github.com/EdibuLLC/JSONWebToken/internal/cli"
	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

// keySourceFlags are the signing key flags shared by sign and cwt sign.
type keySourceFlags struct {
	key        string
	passphrase string
	secretEnv  string
	secretFile string
	p12        string
	hsmConfig  string
	keyLabel   string
	keyID      string
}

// loadSigner resolves the signing key flags into a ready strategy.
// Exactly one source must be set. When alg is empty it is inferred
// from the key type; HMAC and HSM sources always require --algorithm.
func loadSigner(f *keySourceFlags, algName string) (crypto.Signer, crypto.Algorithm, error) {
	sources := 0
	for _, set := range []bool{f.key != "", f.secretEnv != "" || f.secretFile != "", f.p12 != "", f.hsmConfig != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return nil, "", fmt.Errorf("a key source is required: --key, --secret-env, --secret-file, --p12 or --hsm-config")
	}
	if sources > 1 {
		return nil, "", fmt.Errorf("key sources are mutually exclusive")
	}

	var alg crypto.Algorithm
	if algName != "" {
		parsed, err := crypto.ParseAlgorithm(algName)
		if err != nil {
			return nil, "", err
		}
		alg = parsed
	}

	switch {
	case f.secretEnv != "" || f.secretFile != "":
		if alg == "" {
			return nil, "", fmt.Errorf("--algorithm is required with an HMAC secret source")
		}
		if !alg.IsHMAC() {
			return nil, "", fmt.Errorf("secret source requires an HMAC algorithm, got %s", alg)
		}
		secret, err := loadSecret(f.secretEnv, f.secretFile)
		if err != nil {
			return nil, "", err
		}
		signer, err := crypto.NewSigner(alg, secret)
		if err != nil {
			return nil, "", err
		}
		return signer, alg, nil

	case f.p12 != "":
		data, err := os.ReadFile(f.p12)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read PKCS#12 archive: %w", err)
		}
		_, priv, err := keys.RSAKeysFromPKCS12(data, f.passphrase)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PKCS#12 archive: %w", err)
		}
		if alg == "" {
			alg = crypto.AlgRS256
		}
		if !alg.IsRSA() {
			return nil, "", fmt.Errorf("PKCS#12 source requires an RSA algorithm, got %s", alg)
		}
		signer, err := crypto.NewSigner(alg, stdcrypto.Signer(priv))
		if err != nil {
			return nil, "", err
		}
		return signer, alg, nil

	case f.hsmConfig != "":
		if alg == "" {
			return nil, "", fmt.Errorf("--algorithm is required with --hsm-config")
		}
		if !alg.IsRSA() {
			return nil, "", fmt.Errorf("HSM signing supports RSA algorithms only, got %s", alg)
		}
		if f.keyLabel == "" && f.keyID == "" {
			return nil, "", fmt.Errorf("--key-label or --key-id is required with --hsm-config")
		}
		cfg, err := keys.LoadHSMConfig(f.hsmConfig)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load HSM config: %w", err)
		}
		p11cfg, err := cfg.ToPKCS11Config(f.keyLabel, f.keyID)
		if err != nil {
			return nil, "", err
		}
		handle, err := keys.NewPKCS11Key(*p11cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open HSM key: %w", err)
		}
		signer, err := crypto.NewSigner(alg, stdcrypto.Signer(handle))
		if err != nil {
			return nil, "", err
		}
		return signer, alg, nil

	default:
		handle, err := keys.LoadPrivateKey(f.key, []byte(f.passphrase))
		if err != nil {
			return nil, "", fmt.Errorf("failed to load private key: %w", err)
		}
		if alg == "" {
			alg, err = inferAlgorithm(handle.Public())
			if err != nil {
				return nil, "", err
			}
		}
		signer, err := crypto.NewSigner(alg, handle)
		if err != nil {
			return nil, "", err
		}
		return signer, alg, nil
	}
}

// loadSecret reads an HMAC secret from an environment variable
// (base64-encoded) or a file (raw bytes, trailing whitespace trimmed).
func loadSecret(secretEnv, secretFile string) ([]byte, error) {
	if secretEnv != "" {
		raw := os.Getenv(secretEnv)
		if raw == "" {
			return nil, fmt.Errorf("environment variable %s is not set", secretEnv)
		}
		secret, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode secret from %s: %w", secretEnv, err)
		}
		return secret, nil
	}
	data, err := os.ReadFile(secretFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}
	return []byte(strings.TrimRight(string(data), "\r\n")), nil
}

// inferAlgorithm picks the default JOSE algorithm for a public key.
// ECDSA curves map to their fixed algorithm; RSA defaults to RS256.
func inferAlgorithm(key stdcrypto.PublicKey) (crypto.Algorithm, error) {
	switch pub := key.(type) {
	case *rsa.PublicKey:
		return crypto.AlgRS256, nil
	case *ecdsa.PublicKey:
		switch pub.Curve {
		case elliptic.P256():
			return crypto.AlgES256, nil
		case elliptic.P384():
			return crypto.AlgES384, nil
		case elliptic.P521():
			return crypto.AlgES512, nil
		default:
			return "", fmt.Errorf("unsupported ECDSA curve: %s", pub.Curve.Params().Name)
		}
	case ed25519.PublicKey, ed448.PublicKey:
		return crypto.AlgEdDSA, nil
	default:
		return "", fmt.Errorf("cannot infer algorithm for key type %T (use --algorithm)", pub)
	}
}

// verifierSourceFlags are the verification key flags shared by verify
// and cwt verify.
type verifierSourceFlags struct {
	key        string
	cert       string
	p12        string
	passphrase string
	secretEnv  string
	secretFile string
}

// loadVerifier resolves the verification key flags into a strategy for
// the token's algorithm.
func loadVerifier(f *verifierSourceFlags, alg crypto.Algorithm) (crypto.Verifier, error) {
	switch {
	case f.secretEnv != "" || f.secretFile != "":
		if !alg.IsHMAC() {
			return nil, fmt.Errorf("token algorithm %s cannot be verified with a shared secret", alg)
		}
		secret, err := loadSecret(f.secretEnv, f.secretFile)
		if err != nil {
			return nil, err
		}
		return crypto.NewVerifier(alg, secret)

	case f.cert != "":
		cert, err := keys.LoadCertificate(f.cert)
		if err != nil {
			return nil, err
		}
		return crypto.VerifierForPublicKey(alg, cert.PublicKey)

	case f.p12 != "":
		data, err := os.ReadFile(f.p12)
		if err != nil {
			return nil, fmt.Errorf("failed to read PKCS#12 archive: %w", err)
		}
		pub, _, err := keys.RSAKeysFromPKCS12(data, f.passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to open PKCS#12 archive: %w", err)
		}
		return crypto.VerifierForPublicKey(alg, pub)

	case f.key != "":
		pub, err := keys.LoadPublicKey(f.key)
		if err != nil {
			return nil, err
		}
		return crypto.VerifierForPublicKey(alg, pub)

	default:
		return nil, fmt.Errorf("a key source is required: --key, --cert, --p12, --secret-env or --secret-file")
	}
}

// claimFlags are the registered-claim flags shared by sign and cwt sign.
type claimFlags struct {
	iss    string
	sub    string
	aud    []string
	exp    string
	nbf    string
	jti    bool
	claims []string
}

// buildClaims assembles a claim set from flags. exp and nbf are
// durations relative to now ("15m", "1h", "30d").
func buildClaims(f *claimFlags) (jose.Claims, error) {
	claims := jose.Claims{}
	now := time.Now()

	if f.iss != "" {
		claims.SetIssuer(f.iss)
	}
	if f.sub != "" {
		claims.SetSubject(f.sub)
	}
	if len(f.aud) > 0 {
		claims.SetAudience(f.aud...)
	}
	claims.SetIssuedAt(now)

	if f.exp != "" {
		d, err := parseLifetime(f.exp)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration duration: %w", err)
		}
		claims.SetExpiresAt(now.Add(d))
	}
	if f.nbf != "" {
		d, err := parseLifetime(f.nbf)
		if err != nil {
			return nil, fmt.Errorf("invalid not-before duration: %w", err)
		}
		claims.SetNotBefore(now.Add(d))
	}
	if f.jti {
		claims.SetID(jose.NewID())
	}

	for _, c := range f.claims {
		name, value, err := cli.ParseKeyValue(c)
		if err != nil {
			return nil, fmt.Errorf("invalid claim: %w", err)
		}
		claims[name] = value
	}

	return claims, nil
}

// parseLifetime parses a duration with day support ("30d" is 30 days).
func parseLifetime(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := time.ParseDuration(strings.TrimSuffix(s, "d") + "h")
		if err != nil {
			return 0, err
		}
		return days * 24, nil
	}
	return time.ParseDuration(s)
}

// parseVarFlags converts --var key=value flags into a value map.
func parseVarFlags(vars []string) (map[string]any, error) {
	values := make(map[string]any, len(vars))
	for _, v := range vars {
		name, value, err := cli.ParseKeyValue(v)
		if err != nil {
			return nil, fmt.Errorf("invalid variable: %w", err)
		}
		if list := strings.Split(value, ","); len(list) > 1 {
			values[name] = list
		} else {
			values[name] = value
		}
	}
	return values, nil
}
