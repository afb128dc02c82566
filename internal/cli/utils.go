package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// FirstOrEmpty returns the first element of a slice or an empty string.
func FirstOrEmpty(s []string) string {
	if len(s) > 0 {
		return s[0]
	}
	return ""
}

// ReadInput reads the contents of a file, or stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// ReadTokenArg resolves a token command argument. An argument starting
// with "@" names a file to read the token from; "-" reads stdin; any
// other value is the token itself.
func ReadTokenArg(arg string) (string, error) {
	if arg == "-" || strings.HasPrefix(arg, "@") {
		path := strings.TrimPrefix(arg, "@")
		if arg == "-" {
			path = "-"
		}
		data, err := ReadInput(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return arg, nil
}

// WriteOutput writes data to a file, or to stdout when path is empty
// or "-". File output is created with mode 0600.
func WriteOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// PrintJSON pretty-prints a value as indented JSON to a writer.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// ParseKeyValue splits a "key=value" flag argument.
func ParseKeyValue(s string) (string, string, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid format: %s (use key=value)", s)
	}
	return parts[0], parts[1], nil
}

// Truncate shortens a string for tabular display.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
