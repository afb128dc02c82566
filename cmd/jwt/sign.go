package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/audit"
	"github.com/EdibuLLC/JSONWebToken/internal/cli"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a JSON Web Token",
	Long: `Create and sign a JWS compact serialization (RFC 7515).

Claims come either from explicit flags (--iss, --sub, --aud, --exp,
--claim) or from an issuance profile (--profile with --var values).
A profile fixes the algorithm, claim templates and lifetime; explicit
claim flags are rejected when a profile is used.

Key Sources (mutually exclusive):
  --key FILE         PEM private key (algorithm inferred from key type)
  --p12 FILE         PKCS#12 archive holding an RSA identity
  --secret-env VAR   Environment variable with a base64 HMAC secret
  --secret-file FILE File with a raw HMAC secret
  --hsm-config FILE  PKCS#11 HSM key (RSA only, requires --key-label)

Examples:
  # Sign with explicit claims
  jwt sign --key signer.pem --iss https://auth.example.com --sub user-42 \
    --aud api.example.com --exp 15m --jti --out token.jwt

  # Sign with an HMAC secret from the environment
  export TOKEN_SECRET=$(openssl rand -base64 32)
  jwt sign --secret-env TOKEN_SECRET --algorithm HS256 --sub user-42 --exp 1h

  # Sign using a profile
  jwt sign --profile rsa/api-access --var subject=user-42 \
    --var audience=api.example.com --var scope=read --key signer.pem

  # Sign with an HSM-held RSA key
  export HSM_PIN="****"
  jwt sign --hsm-config ./hsm.yaml --key-label token-signer --algorithm RS256 \
    --iss https://auth.example.com --sub user-42 --exp 15m`,
	RunE: runSign,
}

var (
	signKeyFlags   keySourceFlags
	signClaimFlags claimFlags

	signAlgorithm  string
	signKid        string
	signOutput     string
	signProfile    string
	signProfileDir string
	signVars       []string
)

func init() {
	flags := signCmd.Flags()

	// key source flags
	flags.StringVarP(&signKeyFlags.key, "key", "k", "", "Private key file (PEM)")
	flags.StringVarP(&signKeyFlags.passphrase, "passphrase", "p", "", "Key or archive passphrase")
	flags.StringVar(&signKeyFlags.p12, "p12", "", "PKCS#12 archive file")
	flags.StringVar(&signKeyFlags.secretEnv, "secret-env", "", "Environment variable holding a base64 HMAC secret")
	flags.StringVar(&signKeyFlags.secretFile, "secret-file", "", "File holding a raw HMAC secret")
	flags.StringVar(&signKeyFlags.hsmConfig, "hsm-config", "", "HSM configuration file (YAML)")
	flags.StringVar(&signKeyFlags.keyLabel, "key-label", "", "HSM key label (CKA_LABEL)")
	flags.StringVar(&signKeyFlags.keyID, "key-id", "", "HSM key ID (CKA_ID, hex)")

	// claim flags
	flags.StringVar(&signClaimFlags.iss, "iss", "", "Issuer claim")
	flags.StringVar(&signClaimFlags.sub, "sub", "", "Subject claim")
	flags.StringArrayVar(&signClaimFlags.aud, "aud", nil, "Audience claim (repeatable)")
	flags.StringVar(&signClaimFlags.exp, "exp", "", "Expiration lifetime (duration: 15m, 1h, 30d)")
	flags.StringVar(&signClaimFlags.nbf, "nbf", "", "Not-before offset from now (duration, may be negative)")
	flags.BoolVar(&signClaimFlags.jti, "jti", false, "Add a random token ID claim")
	flags.StringArrayVar(&signClaimFlags.claims, "claim", nil, "Custom claims (format: name=value)")

	// profile flags
	flags.StringVar(&signProfile, "profile", "", "Issuance profile name")
	flags.StringVar(&signProfileDir, "profile-dir", "", "Directory with custom profiles")
	flags.StringArrayVar(&signVars, "var", nil, "Profile variables (format: name=value)")

	flags.StringVar(&signAlgorithm, "algorithm", "", "JOSE algorithm (inferred from key when omitted)")
	flags.StringVar(&signKid, "kid", "", "Key ID header")
	flags.StringVarP(&signOutput, "out", "o", "", "Output file (default: stdout)")
}

func runSign(cmd *cobra.Command, args []string) error {
	var claims jose.Claims
	var prof *profile.Profile
	var err error

	if signProfile != "" {
		if signClaimFlags.iss != "" || signClaimFlags.sub != "" || len(signClaimFlags.aud) > 0 ||
			signClaimFlags.exp != "" || len(signClaimFlags.claims) > 0 {
			return fmt.Errorf("claim flags cannot be combined with --profile")
		}
		prof, claims, err = renderProfileClaims()
		if err != nil {
			return err
		}
		if signAlgorithm == "" {
			signAlgorithm = string(prof.Algorithm)
		}
	} else {
		claims, err = buildClaims(&signClaimFlags)
		if err != nil {
			return err
		}
	}

	signer, alg, err := loadSigner(&signKeyFlags, signAlgorithm)
	if err != nil {
		return err
	}
	if prof != nil && alg != prof.Algorithm {
		return fmt.Errorf("profile %s requires algorithm %s, key signs with %s",
			prof.Name, prof.Algorithm, alg)
	}

	token := jose.New(claims)
	if signKid != "" {
		token.Header.KeyID = signKid
	}

	signed, err := token.SignedString(signer)
	if err != nil {
		audit.LogTokenSigned(signProfile, string(alg), signKid, claims.ID(), claims.Subject(), false)
		return fmt.Errorf("failed to sign token: %w", err)
	}
	audit.LogTokenSigned(signProfile, string(alg), signKid, claims.ID(), claims.Subject(), true)

	if signOutput != "" && signOutput != "-" {
		if err := cli.WriteOutput(signOutput, []byte(signed+"\n")); err != nil {
			return err
		}
		fmt.Printf("Token saved to: %s\n", signOutput)
		return nil
	}
	fmt.Println(signed)
	return nil
}

// renderProfileClaims resolves the profile and renders its claim
// templates against the --var values.
func renderProfileClaims() (*profile.Profile, jose.Claims, error) {
	dir := signProfileDir
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid profile directory: %w", err)
		}
		dir = abs
	}

	store := profile.NewStore(dir)
	if err := store.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	prof, ok := store.Get(signProfile)
	if !ok {
		return nil, nil, fmt.Errorf("profile not found: %s", signProfile)
	}

	values, err := parseVarFlags(signVars)
	if err != nil {
		return nil, nil, err
	}

	engine, err := profile.NewTemplateEngine(prof)
	if err != nil {
		return nil, nil, err
	}
	claims, err := engine.Render(values)
	if err != nil {
		return nil, nil, err
	}
	return prof, claims, nil
}
