package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/cli"
	"github.com/EdibuLLC/JSONWebToken/internal/crypto"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Verify a JSON Web Token",
	Long: `Verify the signature and claims of a JWS compact serialization.

The token argument is the token itself, @FILE to read from a file,
or - to read from stdin.

The signature is checked against the given key; expiration and
not-before claims are always enforced. Expected issuer, audience and
subject are checked when the matching flags are set.

Exit code is 0 for a valid token and 1 for an invalid one.

Key Sources:
  --key FILE         PEM public key
  --cert FILE        PEM certificate (public key is extracted)
  --p12 FILE         PKCS#12 archive (RSA certificate identity)
  --secret-env VAR   Environment variable with a base64 HMAC secret
  --secret-file FILE File with a raw HMAC secret

Examples:
  # Verify against a public key
  jwt verify @token.jwt --key public.pem

  # Verify against a certificate with expected claims
  jwt verify @token.jwt --cert signer.crt --iss https://auth.example.com \
    --aud api.example.com

  # Verify an HMAC token
  jwt verify @token.jwt --secret-env TOKEN_SECRET`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var (
	verifyKeyFlags verifierSourceFlags

	verifyIss string
	verifyAud string
	verifySub string
)

func init() {
	flags := verifyCmd.Flags()
	flags.StringVarP(&verifyKeyFlags.key, "key", "k", "", "Public key file (PEM)")
	flags.StringVar(&verifyKeyFlags.cert, "cert", "", "Certificate file (PEM)")
	flags.StringVar(&verifyKeyFlags.p12, "p12", "", "PKCS#12 archive file")
	flags.StringVarP(&verifyKeyFlags.passphrase, "passphrase", "p", "", "PKCS#12 passphrase")
	flags.StringVar(&verifyKeyFlags.secretEnv, "secret-env", "", "Environment variable holding a base64 HMAC secret")
	flags.StringVar(&verifyKeyFlags.secretFile, "secret-file", "", "File holding a raw HMAC secret")

	flags.StringVar(&verifyIss, "iss", "", "Expected issuer")
	flags.StringVar(&verifyAud, "aud", "", "Expected audience")
	flags.StringVar(&verifySub, "sub", "", "Expected subject")
}

func runVerify(cmd *cobra.Command, args []string) error {
	raw, err := cli.ReadTokenArg(args[0])
	if err != nil {
		return err
	}

	// Decode first: the header carries the algorithm the verifier
	// must be built for.
	decoded, err := jose.Decode(raw)
	if err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}
	alg := crypto.Algorithm(decoded.Header.Algorithm)

	verifier, err := loadVerifier(&verifyKeyFlags, alg)
	if err != nil {
		return err
	}

	token, err := jose.Verify(raw, verifier)
	if err != nil {
		audit.LogTokenVerified(string(alg), decoded.Claims.ID(), false, err.Error())
		fmt.Printf("Token is %s\n", cli.FormatStatus("invalid"))
		fmt.Printf("  Reason: %s\n", err)
		return fmt.Errorf("token verification failed")
	}

	validator := &jose.Validator{
		ExpectedIssuer:   verifyIss,
		ExpectedAudience: verifyAud,
		ExpectedSubject:  verifySub,
	}
	if err := validator.Validate(token.Claims); err != nil {
		audit.LogTokenVerified(string(alg), token.Claims.ID(), false, err.Error())
		fmt.Printf("Token is %s\n", cli.FormatStatus("invalid"))
		fmt.Printf("  Reason: %s\n", err)
		return fmt.Errorf("token verification failed")
	}

	audit.LogTokenVerified(string(alg), token.Claims.ID(), true, "")

	fmt.Printf("Token is %s\n", cli.FormatStatus("valid"))
	fmt.Printf("  Algorithm: %s\n", alg)
	if token.Header.KeyID != "" {
		fmt.Printf("  Key ID:    %s\n", token.Header.KeyID)
	}
	printClaimSummary(token.Claims)
	return nil
}

func printClaimSummary(claims jose.Claims) {
	if iss := claims.Issuer(); iss != "" {
		fmt.Printf("  Issuer:    %s\n", iss)
	}
	if sub := claims.Subject(); sub != "" {
		fmt.Printf("  Subject:   %s\n", sub)
	}
	if aud := claims.Audience(); len(aud) > 0 {
		fmt.Printf("  Audience:  %v\n", aud)
	}
	if exp, ok := claims.ExpiresAt(); ok {
		fmt.Printf("  Expires:   %s\n", exp.Format("2006-01-02 15:04:05 MST"))
	}
	if id := claims.ID(); id != "" {
		fmt.Printf("  Token ID:  %s\n", id)
	}
}
