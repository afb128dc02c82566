package main

import (
	stdcrypto "crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Key management commands",
	Long:  `Commands for generating and managing signing keys.`,
}

var keyGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a signing key",
	Long: `Generate a new signing key for a JOSE algorithm.

Asymmetric keys are written as PKCS#8 PEM (Ed448 uses a raw PEM
block). HMAC secrets are written base64-encoded.

Supported algorithms:
  HS256, HS384, HS512  - HMAC (secret length matches the digest)
  RS256, RS384, RS512  - RSA (--rsa-bits, default 2048)
  ES256, ES384, ES512  - ECDSA (P-256, P-384, P-521)
  EdDSA                - Ed25519, or Ed448 with --ed448

Examples:
  # Generate an ECDSA P-256 key
  jwt key gen --algorithm ES256 --out signer.pem

  # Generate a 4096-bit RSA key with a passphrase
  jwt key gen --algorithm RS256 --rsa-bits 4096 --passphrase secret --out rsa.pem

  # Generate an Ed448 key
  jwt key gen --algorithm EdDSA --ed448 --out ed448.pem

  # Generate an HMAC secret
  jwt key gen --algorithm HS256 --out secret.b64`,
	RunE: runKeyGen,
}

var keyPubCmd = &cobra.Command{
	Use:   "pub",
	Short: "Extract public key from private key",
	Long: `Extract the public key from a private key file.

The output is a PEM-encoded public key that can be shared freely.

Examples:
  # Extract public key from ECDSA key
  jwt key pub --key private.pem --out public.pem

  # Extract from encrypted key
  jwt key pub --key encrypted.pem --passphrase secret --out public.pem`,
	RunE: runKeyPub,
}

var keyInspectCmd = &cobra.Command{
	Use:   "inspect <keyfile>",
	Short: "Display information about a key file",
	Long: `Display information about a private or public key file.

Shows key type, size, encryption status, and the JOSE algorithms
the key can sign or verify with.

Examples:
  jwt key inspect signer.pem
  jwt key inspect encrypted.pem --passphrase secret`,
	Args: cobra.ExactArgs(1),
	RunE: runKeyInspect,
}

var (
	keyGenAlgorithm  string
	keyGenOutput     string
	keyGenPassphrase string
	keyGenRSABits    int
	keyGenEd448      bool

	keyPubKey        string
	keyPubOut        string
	keyPubPassphrase string

	keyInspectPassphrase string
)

func init() {
	keyCmd.AddCommand(keyGenCmd)
	keyCmd.AddCommand(keyPubCmd)
	keyCmd.AddCommand(keyInspectCmd)

	// gen flags
	flags := keyGenCmd.Flags()
	flags.StringVarP(&keyGenAlgorithm, "algorithm", "a", "ES256", "JOSE algorithm")
	flags.StringVarP(&keyGenOutput, "out", "o", "", "Output file (required)")
	flags.StringVarP(&keyGenPassphrase, "passphrase", "p", "", "Passphrase for encryption (asymmetric keys only)")
	flags.IntVar(&keyGenRSABits, "rsa-bits", crypto.DefaultRSABits, "RSA modulus size in bits")
	flags.BoolVar(&keyGenEd448, "ed448", false, "Generate Ed448 instead of Ed25519 (EdDSA only)")
	_ = keyGenCmd.MarkFlagRequired("out")

	// pub flags
	keyPubCmd.Flags().StringVarP(&keyPubKey, "key", "k", "", "Input private key file (required)")
	keyPubCmd.Flags().StringVarP(&keyPubOut, "out", "o", "", "Output public key file (required)")
	keyPubCmd.Flags().StringVar(&keyPubPassphrase, "passphrase", "", "Passphrase for encrypted key")
	_ = keyPubCmd.MarkFlagRequired("key")
	_ = keyPubCmd.MarkFlagRequired("out")

	// inspect flags
	keyInspectCmd.Flags().StringVarP(&keyInspectPassphrase, "passphrase", "p", "", "Key passphrase")
}

func runKeyGen(cmd *cobra.Command, args []string) error {
	alg, err := crypto.ParseAlgorithm(keyGenAlgorithm)
	if err != nil {
		return fmt.Errorf("invalid algorithm: %w", err)
	}
	if keyGenEd448 && !alg.IsEdDSA() {
		return fmt.Errorf("--ed448 is only valid with --algorithm EdDSA")
	}
	if keyGenPassphrase != "" && alg.IsHMAC() {
		return fmt.Errorf("--passphrase is not supported for HMAC secrets")
	}

	fmt.Printf("Generating %s key...\n", alg.Description())

	var kp *crypto.KeyPair
	switch {
	case alg.IsRSA() && keyGenRSABits != crypto.DefaultRSABits:
		kp, err = crypto.GenerateRSAKeyPair(alg, keyGenRSABits)
	case keyGenEd448:
		kp, err = crypto.GenerateEd448KeyPair()
	default:
		kp, err = crypto.GenerateKeyPair(alg)
	}
	if err != nil {
		audit.LogKeyGenerated("", string(alg), keyGenOutput, false)
		return fmt.Errorf("failed to generate key: %w", err)
	}

	var out []byte
	if alg.IsHMAC() {
		secret := kp.PrivateKey.([]byte)
		out = []byte(base64.StdEncoding.EncodeToString(secret) + "\n")
	} else {
		out, err = keys.EncodePrivateKeyPEM(kp.PrivateKey, []byte(keyGenPassphrase))
		if err != nil {
			return fmt.Errorf("failed to encode private key: %w", err)
		}
	}

	if err := os.WriteFile(keyGenOutput, out, 0600); err != nil {
		audit.LogKeyGenerated("", string(alg), keyGenOutput, false)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	audit.LogKeyGenerated("", string(alg), keyGenOutput, true)

	if alg.IsHMAC() {
		fmt.Printf("Secret saved to: %s (base64)\n", keyGenOutput)
		fmt.Println("Keep this file private; anyone holding it can issue and verify tokens.")
		return nil
	}

	fmt.Printf("Private key saved to: %s\n", keyGenOutput)
	if keyGenPassphrase == "" {
		fmt.Println("WARNING: Private key is not encrypted.")
	} else {
		fmt.Println("Private key is encrypted with passphrase.")
	}

	return nil
}

func runKeyPub(cmd *cobra.Command, args []string) error {
	handle, err := keys.LoadPrivateKey(keyPubKey, []byte(keyPubPassphrase))
	if err != nil {
		return fmt.Errorf("failed to load private key: %w", err)
	}

	out, err := keys.EncodePublicKeyPEM(handle.Public())
	if err != nil {
		return fmt.Errorf("failed to encode public key: %w", err)
	}

	if err := os.WriteFile(keyPubOut, out, 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	fmt.Printf("Public key saved to: %s\n", keyPubOut)
	return nil
}

func runKeyInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		// Not PEM: treat as a base64 HMAC secret.
		secret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("file is neither PEM nor a base64 secret")
		}
		fmt.Printf("File:       %s\n", path)
		fmt.Printf("Type:       HMAC secret\n")
		fmt.Printf("Length:     %d bytes\n", len(secret))
		fmt.Printf("Algorithms: %s\n", hmacAlgorithmsFor(len(secret)))
		return nil
	}

	fmt.Printf("File:       %s\n", path)

	if _, encrypted := block.Headers["Proc-Type"]; encrypted {
		fmt.Printf("Encrypted:  yes\n")
	} else {
		fmt.Printf("Encrypted:  no\n")
	}

	if block.Type == "PUBLIC KEY" {
		pub, err := keys.ParsePublicKeyPEM(data)
		if err != nil {
			return err
		}
		return printKeyDetails("public key", pub)
	}

	handle, err := keys.ParsePrivateKeyPEM(data, []byte(keyInspectPassphrase))
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}
	return printKeyDetails("private key", handle.Public())
}

func printKeyDetails(kind string, pub stdcrypto.PublicKey) error {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		fmt.Printf("Type:       RSA %s\n", kind)
		fmt.Printf("Size:       %d bits\n", k.N.BitLen())
		fmt.Printf("Algorithms: RS256, RS384, RS512\n")
	case *ecdsa.PublicKey:
		fmt.Printf("Type:       ECDSA %s (%s)\n", kind, k.Curve.Params().Name)
		alg, err := inferAlgorithm(k)
		if err != nil {
			return err
		}
		fmt.Printf("Algorithms: %s\n", alg)
	case ed25519.PublicKey:
		fmt.Printf("Type:       Ed25519 %s\n", kind)
		fmt.Printf("Algorithms: EdDSA\n")
	case ed448.PublicKey:
		fmt.Printf("Type:       Ed448 %s\n", kind)
		fmt.Printf("Algorithms: EdDSA\n")
	default:
		return fmt.Errorf("unsupported key type: %T", pub)
	}
	return nil
}

// hmacAlgorithmsFor lists the HMAC algorithms a secret length satisfies
// (RFC 7518 requires the secret to be at least the digest length).
func hmacAlgorithmsFor(length int) string {
	var algs []string
	for _, alg := range []crypto.Algorithm{crypto.AlgHS256, crypto.AlgHS384, crypto.AlgHS512} {
		if length >= alg.Hash().Size() {
			algs = append(algs, string(alg))
		}
	}
	if len(algs) == 0 {
		return "none (secret too short)"
	}
	return strings.Join(algs, ", ")
}
