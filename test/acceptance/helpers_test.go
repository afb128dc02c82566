//go:build acceptance

// Package acceptance contains black-box CLI acceptance tests (TestA_*).
// Run with: go test -tags=acceptance ./test/acceptance/...
package acceptance

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// jwtBinary is the path to the jwt binary.
// Set via JWT_BINARY env var or default to ./bin/jwt in the repo root.
var jwtBinary string

func init() {
	if bin := os.Getenv("JWT_BINARY"); bin != "" {
		jwtBinary = bin
	} else {
		// Default: look for binary in repo root
		jwtBinary = "../../bin/jwt"
	}
}

// runJWT executes the jwt CLI with the given arguments and returns stdout.
// Fails the test if the command returns a non-zero exit code.
func runJWT(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(jwtBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		t.Fatalf("jwt %s failed: %v\nstderr: %s\nstdout: %s",
			strings.Join(args, " "), err, stderr.String(), stdout.String())
	}
	return stdout.String()
}

// runJWTExpectError executes jwt and expects it to fail.
// Returns the combined output (stdout + stderr).
func runJWTExpectError(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command(jwtBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		t.Fatalf("jwt %s expected to fail but succeeded\nstdout: %s",
			strings.Join(args, " "), stdout.String())
	}
	return stdout.String() + stderr.String()
}

// runJWTEnv executes the jwt CLI with extra environment variables.
func runJWTEnv(t *testing.T, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(jwtBinary, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		t.Fatalf("jwt %s failed: %v\nstderr: %s\nstdout: %s",
			strings.Join(args, " "), err, stderr.String(), stdout.String())
	}
	return stdout.String()
}

// setupKeyPair generates a signing key and extracts its public half.
// Returns the private and public key paths.
func setupKeyPair(t *testing.T, algorithm string) (keyPath, pubPath string) {
	t.Helper()
	dir := t.TempDir()
	keyPath = filepath.Join(dir, "signer.pem")
	pubPath = filepath.Join(dir, "public.pem")

	runJWT(t, "key", "gen", "--algorithm", algorithm, "--out", keyPath)
	runJWT(t, "key", "pub", "--key", keyPath, "--out", pubPath)
	return
}

// signToken issues a token with the given key and returns its path.
func signToken(t *testing.T, keyPath string, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.jwt")

	args := append([]string{"sign",
		"--key", keyPath,
		"--iss", "https://auth.example.com",
		"--sub", "user-42",
		"--aud", "api.example.com",
		"--exp", "15m",
		"--out", tokenPath}, extra...)
	runJWT(t, args...)
	return tokenPath
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("expected file to exist: %s", path)
	}
}

// assertOutputContains fails if the output does not contain the expected substring.
func assertOutputContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got: %s", expected, output)
	}
}

// writeTestFile creates a temporary file with the given content.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}
