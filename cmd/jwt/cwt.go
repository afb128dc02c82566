package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/cli"
	"github.com/EdibuLLC/JSONWebToken/internal/cwt"
)

var cwtCmd = &cobra.Command{
	Use:   "cwt",
	Short: "CBOR Web Token operations (RFC 8392)",
	Long: `Commands for issuing and verifying CBOR Web Tokens.

CWTs carry the same claims as JWTs in a compact binary encoding,
signed as COSE_Sign1 structures (RFC 9052). Asymmetric algorithms
only: HMAC and Ed448 keys are rejected.

Examples:
  # Issue a CWT
  jwt cwt sign --key signer.pem --iss https://auth.example.com \
    --sub device-7 --exp 24h --out token.cwt

  # Verify a CWT
  jwt cwt verify token.cwt --key public.pem

  # Show claims without verification
  jwt cwt info token.cwt`,
}

var cwtSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Create a signed CWT",
	Long: `Create and sign a CBOR Web Token.

Claims use the same flags as jwt sign. The --jti flag stores a random
token ID in the cti claim.

Examples:
  jwt cwt sign --key signer.pem --iss https://auth.example.com \
    --sub device-7 --exp 24h --jti --out token.cwt`,
	RunE: runCWTSign,
}

var cwtVerifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Verify a signed CWT",
	Long: `Verify the COSE_Sign1 signature and time claims of a CWT.

Exit code is 0 for a valid token and 1 for an invalid one.

Examples:
  jwt cwt verify token.cwt --key public.pem
  jwt cwt verify token.cwt --cert signer.crt`,
	Args: cobra.ExactArgs(1),
	RunE: runCWTVerify,
}

var cwtInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Display CWT claims without verification",
	Args:  cobra.ExactArgs(1),
	RunE:  runCWTInfo,
}

var (
	cwtSignKeyFlags   keySourceFlags
	cwtSignClaimFlags claimFlags
	cwtSignAlgorithm  string
	cwtSignKid        string
	cwtSignOutput     string

	cwtVerifyKeyFlags verifierSourceFlags
)

func init() {
	cwtCmd.AddCommand(cwtSignCmd)
	cwtCmd.AddCommand(cwtVerifyCmd)
	cwtCmd.AddCommand(cwtInfoCmd)

	flags := cwtSignCmd.Flags()
	flags.StringVarP(&cwtSignKeyFlags.key, "key", "k", "", "Private key file (PEM)")
	flags.StringVarP(&cwtSignKeyFlags.passphrase, "passphrase", "p", "", "Key or archive passphrase")
	flags.StringVar(&cwtSignKeyFlags.p12, "p12", "", "PKCS#12 archive file")
	flags.StringVar(&cwtSignKeyFlags.hsmConfig, "hsm-config", "", "HSM configuration file (YAML)")
	flags.StringVar(&cwtSignKeyFlags.keyLabel, "key-label", "", "HSM key label (CKA_LABEL)")
	flags.StringVar(&cwtSignKeyFlags.keyID, "key-id", "", "HSM key ID (CKA_ID, hex)")
	flags.StringVar(&cwtSignAlgorithm, "algorithm", "", "JOSE algorithm (inferred from key when omitted)")
	flags.StringVar(&cwtSignKid, "kid", "", "Key ID header")
	flags.StringVarP(&cwtSignOutput, "out", "o", "", "Output file (required)")
	_ = cwtSignCmd.MarkFlagRequired("out")

	flags.StringVar(&cwtSignClaimFlags.iss, "iss", "", "Issuer claim")
	flags.StringVar(&cwtSignClaimFlags.sub, "sub", "", "Subject claim")
	flags.StringArrayVar(&cwtSignClaimFlags.aud, "aud", nil, "Audience claim")
	flags.StringVar(&cwtSignClaimFlags.exp, "exp", "", "Expiration lifetime (duration: 15m, 1h, 30d)")
	flags.StringVar(&cwtSignClaimFlags.nbf, "nbf", "", "Not-before offset from now (duration)")
	flags.BoolVar(&cwtSignClaimFlags.jti, "jti", false, "Add a random token ID (cti claim)")
	flags.StringArrayVar(&cwtSignClaimFlags.claims, "claim", nil, "Custom claims (format: name=value)")

	vflags := cwtVerifyCmd.Flags()
	vflags.StringVarP(&cwtVerifyKeyFlags.key, "key", "k", "", "Public key file (PEM)")
	vflags.StringVar(&cwtVerifyKeyFlags.cert, "cert", "", "Certificate file (PEM)")
	vflags.StringVar(&cwtVerifyKeyFlags.p12, "p12", "", "PKCS#12 archive file")
	vflags.StringVarP(&cwtVerifyKeyFlags.passphrase, "passphrase", "p", "", "PKCS#12 passphrase")
}

func runCWTSign(cmd *cobra.Command, args []string) error {
	joseClaims, err := buildClaims(&cwtSignClaimFlags)
	if err != nil {
		return err
	}
	claims := cwt.FromJOSE(joseClaims)

	signer, alg, err := loadSigner(&cwtSignKeyFlags, cwtSignAlgorithm)
	if err != nil {
		return err
	}

	data, err := cwt.Sign(claims, signer, cwtSignKid)
	if err != nil {
		audit.LogTokenSigned("", string(alg), cwtSignKid, "", claims.Subject, false)
		return fmt.Errorf("failed to sign CWT: %w", err)
	}
	audit.LogTokenSigned("", string(alg), cwtSignKid, "", claims.Subject, true)

	if err := cli.WriteOutput(cwtSignOutput, data); err != nil {
		return err
	}
	fmt.Printf("CWT saved to: %s (%d bytes, %s)\n", cwtSignOutput, len(data), alg)
	return nil
}

func runCWTVerify(cmd *cobra.Command, args []string) error {
	data, err := cli.ReadInput(args[0])
	if err != nil {
		return err
	}

	// Decode first: the protected header carries the algorithm the
	// verifier must be built for.
	_, alg, err := cwt.Decode(data)
	if err != nil {
		return fmt.Errorf("malformed CWT: %w", err)
	}

	verifier, err := loadVerifier(&cwtVerifyKeyFlags, alg)
	if err != nil {
		return err
	}

	claims, err := cwt.Verify(data, verifier)
	if err != nil {
		audit.LogTokenVerified(string(alg), "", false, err.Error())
		fmt.Printf("CWT is %s\n", cli.FormatStatus("invalid"))
		fmt.Printf("  Reason: %s\n", err)
		return fmt.Errorf("CWT verification failed")
	}

	if !claims.Expiration.IsZero() && time.Now().After(claims.Expiration) {
		audit.LogTokenVerified(string(alg), "", false, "token expired")
		fmt.Printf("CWT is %s\n", cli.FormatStatus("expired"))
		return fmt.Errorf("CWT verification failed")
	}
	if !claims.NotBefore.IsZero() && time.Now().Before(claims.NotBefore) {
		audit.LogTokenVerified(string(alg), "", false, "token not yet valid")
		fmt.Printf("CWT is %s\n", cli.FormatStatus("invalid"))
		return fmt.Errorf("CWT verification failed")
	}

	audit.LogTokenVerified(string(alg), "", true, "")

	fmt.Printf("CWT is %s\n", cli.FormatStatus("valid"))
	fmt.Printf("  Algorithm: %s\n", alg)
	if kid := cwt.KeyID(data); kid != "" {
		fmt.Printf("  Key ID:    %s\n", kid)
	}
	printCWTClaims(claims)
	return nil
}

func runCWTInfo(cmd *cobra.Command, args []string) error {
	data, err := cli.ReadInput(args[0])
	if err != nil {
		return err
	}

	claims, alg, err := cwt.Decode(data)
	if err != nil {
		return fmt.Errorf("malformed CWT: %w", err)
	}

	fmt.Printf("CWT (%d bytes)\n", len(data))
	fmt.Printf("  Algorithm: %s\n", alg)
	if kid := cwt.KeyID(data); kid != "" {
		fmt.Printf("  Key ID:    %s\n", kid)
	}
	printCWTClaims(claims)
	fmt.Println("WARNING: signature not verified")
	return nil
}

func printCWTClaims(c *cwt.Claims) {
	if c.Issuer != "" {
		fmt.Printf("  Issuer:    %s\n", c.Issuer)
	}
	if c.Subject != "" {
		fmt.Printf("  Subject:   %s\n", c.Subject)
	}
	if c.Audience != "" {
		fmt.Printf("  Audience:  %s\n", c.Audience)
	}
	if !c.Expiration.IsZero() {
		fmt.Printf("  Expires:   %s\n", c.Expiration.Format("2006-01-02 15:04:05 MST"))
	}
	if len(c.CWTID) > 0 {
		fmt.Printf("  CWT ID:    %x\n", c.CWTID)
	}
	for name, value := range c.Custom {
		fmt.Printf("  %s: %v\n", name, value)
	}
}
