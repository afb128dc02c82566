package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/keys"
)

var p12Cmd = &cobra.Command{
	Use:   "p12",
	Short: "PKCS#12 archive commands",
	Long: `Commands for inspecting PKCS#12 signing identities.

An archive must hold a complete identity: an RSA private key and its
certificate. Trust-store archives that carry only certificates are
rejected for signing.`,
}

var p12InspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Inspect a PKCS#12 archive",
	Long: `Inspect the signing identity inside a PKCS#12 archive.

Shows the RSA key size and whether the archive can be used for
token signing.

Examples:
  jwt p12 inspect identity.p12 --passphrase secret
  jwt p12 inspect identity.p12 --passphrase secret --out-pub public.pem`,
	Args: cobra.ExactArgs(1),
	RunE: runP12Inspect,
}

var (
	p12Passphrase string
	p12OutPub     string
)

func init() {
	p12Cmd.AddCommand(p12InspectCmd)

	p12InspectCmd.Flags().StringVarP(&p12Passphrase, "passphrase", "p", "", "Archive passphrase")
	p12InspectCmd.Flags().StringVar(&p12OutPub, "out-pub", "", "Write the public key as PEM")
}

func runP12Inspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	pub, _, err := keys.RSAKeysFromPKCS12(data, p12Passphrase)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	fmt.Printf("Archive:    %s\n", args[0])
	fmt.Printf("Identity:   RSA %d bits\n", pub.Public().N.BitLen())
	fmt.Printf("Block size: %d bytes\n", pub.BlockSize())
	fmt.Printf("Signing:    RS256, RS384, RS512\n")

	if p12OutPub != "" {
		pem, err := keys.EncodePublicKeyPEM(pub.Public())
		if err != nil {
			return fmt.Errorf("failed to encode public key: %w", err)
		}
		if err := os.WriteFile(p12OutPub, pem, 0644); err != nil {
			return fmt.Errorf("failed to write public key: %w", err)
		}
		fmt.Printf("Public key saved to: %s\n", p12OutPub)
	}

	return nil
}
