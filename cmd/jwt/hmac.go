package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

var hmacCmd = &cobra.Command{
	Use:   "hmac",
	Short: "HMAC secret commands",
	Long: `Commands for generating and deriving HMAC signing secrets.

Secrets are printed or saved base64-encoded, matching what
--secret-env expects at signing time.`,
}

var hmacGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random HMAC secret",
	Long: `Generate a cryptographically random HMAC secret.

Examples:
  # 32-byte secret for HS256
  jwt hmac gen --out secret.b64

  # 64-byte secret for HS512
  jwt hmac gen --length 64`,
	RunE: runHMACGen,
}

var hmacDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive an HMAC secret from a passphrase",
	Long: `Derive an HMAC secret from a passphrase using PBKDF2-HMAC-SHA256.

The same passphrase, salt and iteration count always derive the same
secret, so producer and consumer can reconstruct it independently.
When no salt is given a random one is generated and printed; keep it
alongside the iteration count.

Examples:
  # Derive with a fresh random salt
  export TOKEN_PASSPHRASE="correct horse battery staple"
  jwt hmac derive --passphrase-env TOKEN_PASSPHRASE --out secret.b64

  # Re-derive with a known salt
  jwt hmac derive --passphrase-env TOKEN_PASSPHRASE --salt 8861cbfc6e2f... \
    --iterations 600000`,
	RunE: runHMACDerive,
}

var (
	hmacGenLength int
	hmacGenOut    string

	hmacDerivePassEnv    string
	hmacDeriveSalt       string
	hmacDeriveIterations int
	hmacDeriveLength     int
	hmacDeriveOut        string
)

func init() {
	hmacCmd.AddCommand(hmacGenCmd)
	hmacCmd.AddCommand(hmacDeriveCmd)

	hmacGenCmd.Flags().IntVar(&hmacGenLength, "length", keys.DefaultHMACKeyLength, "Secret length in bytes")
	hmacGenCmd.Flags().StringVarP(&hmacGenOut, "out", "o", "", "Output file (default: stdout)")

	flags := hmacDeriveCmd.Flags()
	flags.StringVar(&hmacDerivePassEnv, "passphrase-env", "", "Environment variable holding the passphrase (required)")
	flags.StringVar(&hmacDeriveSalt, "salt", "", "Salt in hex (generated when omitted)")
	flags.IntVar(&hmacDeriveIterations, "iterations", keys.DefaultPBKDF2Iterations, "PBKDF2 iteration count")
	flags.IntVar(&hmacDeriveLength, "length", keys.DefaultHMACKeyLength, "Secret length in bytes")
	flags.StringVarP(&hmacDeriveOut, "out", "o", "", "Output file (default: stdout)")
	_ = hmacDeriveCmd.MarkFlagRequired("passphrase-env")
}

func runHMACGen(cmd *cobra.Command, args []string) error {
	secret, err := keys.GenerateHMACKey(hmacGenLength)
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	return writeSecret(hmacGenOut, secret)
}

func runHMACDerive(cmd *cobra.Command, args []string) error {
	passphrase := os.Getenv(hmacDerivePassEnv)
	if passphrase == "" {
		return fmt.Errorf("environment variable %s is not set", hmacDerivePassEnv)
	}

	var salt []byte
	var err error
	if hmacDeriveSalt != "" {
		salt, err = hex.DecodeString(hmacDeriveSalt)
		if err != nil {
			return fmt.Errorf("invalid salt: %w", err)
		}
	} else {
		salt, err = keys.GenerateSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Salt: %s (keep this to re-derive the secret)\n", hex.EncodeToString(salt))
	}

	secret, err := keys.HMACKeyFromPassphrase([]byte(passphrase), salt, hmacDeriveIterations, hmacDeriveLength)
	if err != nil {
		return fmt.Errorf("failed to derive secret: %w", err)
	}
	return writeSecret(hmacDeriveOut, secret)
}

func writeSecret(path string, secret []byte) error {
	encoded := base64.StdEncoding.EncodeToString(secret) + "\n"
	if path == "" || path == "-" {
		fmt.Print(encoded)
		return nil
	}
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return fmt.Errorf("failed to write secret file: %w", err)
	}
	fmt.Printf("Secret saved to: %s (base64)\n", path)
	return nil
}
