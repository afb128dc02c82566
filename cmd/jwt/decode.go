package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/cli"
	"github.com/EdibuLLC/JSONWebToken/internal/jose"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <token>",
	Short: "Decode a token without verifying it",
	Long: `Decode the header and claims of a JWS compact serialization.

The signature is NOT checked. Never trust decoded claims without a
separate verify step.

The token argument is the token itself, @FILE to read from a file,
or - to read from stdin.

Examples:
  jwt decode @token.jwt
  jwt decode @token.jwt --json
  cat token.jwt | jwt decode -`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

var decodeJSON bool

func init() {
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Output as JSON")
}

func runDecode(cmd *cobra.Command, args []string) error {
	raw, err := cli.ReadTokenArg(args[0])
	if err != nil {
		return err
	}

	token, err := jose.Decode(raw)
	if err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}

	header := map[string]any{"alg": token.Header.Algorithm}
	if token.Header.Type != "" {
		header["typ"] = token.Header.Type
	}
	if token.Header.KeyID != "" {
		header["kid"] = token.Header.KeyID
	}
	if token.Header.ContentType != "" {
		header["cty"] = token.Header.ContentType
	}

	if decodeJSON {
		return cli.PrintJSON(os.Stdout, map[string]any{
			"header": header,
			"claims": token.Claims,
		})
	}

	fmt.Println("Header:")
	if err := cli.PrintJSON(os.Stdout, header); err != nil {
		return err
	}
	fmt.Println("Claims:")
	if err := cli.PrintJSON(os.Stdout, token.Claims); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "WARNING: signature not verified")
	return nil
}
