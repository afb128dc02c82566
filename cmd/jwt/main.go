// Command jwt is the CLI tool for the JSON Web Token toolkit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/audit"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var auditLogPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jwt",
	Short: "JSON Web Token toolkit - sign, verify and inspect tokens",
	Long: `jwt is a command-line tool for issuing, verifying and inspecting
JSON Web Tokens (RFC 7519) and CBOR Web Tokens (RFC 8392).

Tokens are signed as JWS compact serializations (RFC 7515) or
COSE_Sign1 structures (RFC 9052). Keys come from PEM files,
PKCS#12 archives, derived HMAC secrets, or a PKCS#11 HSM.

Supported algorithms:
  HMAC:  HS256, HS384, HS512
  RSA:   RS256, RS384, RS512 (RSASSA-PKCS1-v1.5)
  ECDSA: ES256, ES384, ES512
  EdDSA: Ed25519, Ed448

Examples:
  # Generate a signing key
  jwt key gen --algorithm ES256 --out signer.pem

  # Sign a token with explicit claims
  jwt sign --key signer.pem --iss https://auth.example.com --sub user-42 \
    --exp 15m --out token.jwt

  # Sign using an issuance profile
  jwt sign --profile rsa/api-access --var subject=user-42 --key signer.pem

  # Verify a token
  jwt verify @token.jwt --key public.pem --iss https://auth.example.com

  # Decode without verification
  jwt decode @token.jwt`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check for audit log path from environment if not set via flag
		if auditLogPath == "" {
			auditLogPath = os.Getenv("JWT_AUDIT_LOG")
		}

		// Initialize audit logging
		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Close audit log
		return audit.Close()
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set JWT_AUDIT_LOG env var)")

	// Token operations
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(decodeCmd)

	// Key material
	rootCmd.AddCommand(keyCmd)     // jwt key ...
	rootCmd.AddCommand(p12Cmd)     // jwt p12 ...
	rootCmd.AddCommand(hmacCmd)    // jwt hmac ...
	rootCmd.AddCommand(profileCmd) // jwt profile ...

	// CBOR Web Tokens (RFC 8392)
	rootCmd.AddCommand(cwtCmd)

	// Audit log management
	rootCmd.AddCommand(auditCmd)

	// REST API server
	rootCmd.AddCommand(serveCmd)
}
