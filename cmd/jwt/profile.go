package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/EdibuLLC/JSONWebToken/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Issuance profile commands",
	Long: `Commands for listing and inspecting token issuance profiles.

A profile fixes the signing algorithm, claim templates, lifetime and
the variables callers must supply. Built-in profiles ship with the
binary; custom profiles in --dir shadow built-ins with the same name.

Examples:
  jwt profile list
  jwt profile show rsa/api-access
  jwt profile lint ./my-profile.yaml`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileLintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Validate a profile file",
	Long: `Parse and validate a profile YAML file without installing it.

Examples:
  jwt profile lint ./my-profile.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileLint,
}

var profileDir string

func init() {
	profileCmd.PersistentFlags().StringVar(&profileDir, "dir", "", "Directory with custom profiles")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileLintCmd)
}

func loadProfileStore() (*profile.Store, error) {
	dir := profileDir
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid profile directory: %w", err)
		}
		dir = abs
	}
	store := profile.NewStore(dir)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return store, nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	store, err := loadProfileStore()
	if err != nil {
		return err
	}

	builtin, err := profile.BuiltinProfiles()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tALGORITHM\tTTL\tKEY\tSOURCE")
	_, _ = fmt.Fprintln(w, "----\t---------\t---\t---\t------")

	for _, name := range store.List() {
		p, _ := store.Get(name)
		source := "custom"
		if _, ok := builtin[name]; ok {
			source = "built-in"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.Algorithm, p.TTL, p.KeyID, source)
	}

	return w.Flush()
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	store, err := loadProfileStore()
	if err != nil {
		return err
	}

	p, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("profile not found: %s", args[0])
	}

	printProfile(p)
	return nil
}

func runProfileLint(cmd *cobra.Command, args []string) error {
	p, err := profile.LoadProfileFromFile(args[0])
	if err != nil {
		fmt.Printf("INVALID: %s\n", err)
		return fmt.Errorf("profile validation failed")
	}

	fmt.Printf("VALID: %s\n", args[0])
	printProfile(p)
	return nil
}

func printProfile(p *profile.Profile) {
	fmt.Printf("Name:        %s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	fmt.Printf("Algorithm:   %s\n", p.Algorithm)
	if p.KeyID != "" {
		fmt.Printf("Key:         %s\n", p.KeyID)
	}
	fmt.Printf("TTL:         %s\n", p.TTL)
	if p.NotBeforeSkew > 0 {
		fmt.Printf("NBF skew:    %s\n", p.NotBeforeSkew)
	}
	fmt.Printf("Auto ID:     %t\n", p.AutoID)

	if len(p.Claims) > 0 {
		fmt.Println("\nClaims:")
		names := make([]string, 0, len(p.Claims))
		for name := range p.Claims {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-12s %s\n", name+":", p.Claims[name])
		}
	}

	if len(p.Variables) > 0 {
		fmt.Println("\nVariables:")
		names := make([]string, 0, len(p.Variables))
		for name := range p.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := p.Variables[name]
			var attrs []string
			attrs = append(attrs, string(v.Type))
			if v.IsRequired() {
				attrs = append(attrs, "required")
			}
			if v.HasDefault() {
				attrs = append(attrs, fmt.Sprintf("default=%v", v.Default))
			}
			if len(v.Enum) > 0 {
				attrs = append(attrs, "enum: "+strings.Join(v.Enum, "|"))
			}
			fmt.Printf("  %-12s %s\n", name+":", strings.Join(attrs, ", "))
		}
	}
}
