package main

// Note: t.Parallel() is not used because Cobra commands share global flag state.

import (
	"encoding/base64"
	"encoding/hex"
	"os"
	"strings"
	"testing"
)

// readSecretB64 reads and decodes a base64 secret file.
func readSecretB64(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	assertNoError(t, err)
	secret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	assertNoError(t, err)
	return secret
}

func TestU_runHMACGen(t *testing.T) {
	tc := newTestContext(t)

	t.Run("[Unit] hmac gen: default length", func(t *testing.T) {
		resetGlobalFlags()
		resetHMACFlags()

		out := tc.path("secret.b64")
		_, err := executeCommand(rootCmd, "hmac", "gen", "--out", out)
		assertNoError(t, err)

		if got := len(readSecretB64(t, out)); got != 32 {
			t.Errorf("secret length = %d, want 32", got)
		}
	})

	t.Run("[Unit] hmac gen: custom length", func(t *testing.T) {
		resetGlobalFlags()
		resetHMACFlags()

		out := tc.path("secret64.b64")
		_, err := executeCommand(rootCmd, "hmac", "gen", "--length", "64", "--out", out)
		assertNoError(t, err)

		if got := len(readSecretB64(t, out)); got != 64 {
			t.Errorf("secret length = %d, want 64", got)
		}
	})

	t.Run("[Unit] hmac gen: secrets are unique", func(t *testing.T) {
		resetGlobalFlags()
		resetHMACFlags()
		a := tc.path("a.b64")
		_, err := executeCommand(rootCmd, "hmac", "gen", "--out", a)
		assertNoError(t, err)

		resetGlobalFlags()
		resetHMACFlags()
		b := tc.path("b.b64")
		_, err = executeCommand(rootCmd, "hmac", "gen", "--out", b)
		assertNoError(t, err)

		if string(readSecretB64(t, a)) == string(readSecretB64(t, b)) {
			t.Error("two generated secrets are identical")
		}
	})
}

func TestU_runHMACDerive(t *testing.T) {
	tc := newTestContext(t)

	salt := hex.EncodeToString([]byte("0123456789abcdef"))

	t.Run("[Unit] hmac derive: deterministic for same inputs", func(t *testing.T) {
		t.Setenv("TOKEN_PASSPHRASE", "correct horse battery staple")

		resetGlobalFlags()
		resetHMACFlags()
		a := tc.path("derived-a.b64")
		_, err := executeCommand(rootCmd, "hmac", "derive",
			"--passphrase-env", "TOKEN_PASSPHRASE",
			"--salt", salt,
			"--iterations", "1000",
			"--out", a)
		assertNoError(t, err)

		resetGlobalFlags()
		resetHMACFlags()
		b := tc.path("derived-b.b64")
		_, err = executeCommand(rootCmd, "hmac", "derive",
			"--passphrase-env", "TOKEN_PASSPHRASE",
			"--salt", salt,
			"--iterations", "1000",
			"--out", b)
		assertNoError(t, err)

		secretA := readSecretB64(t, a)
		if len(secretA) != 32 {
			t.Errorf("derived length = %d, want 32", len(secretA))
		}
		if string(secretA) != string(readSecretB64(t, b)) {
			t.Error("derivation is not deterministic")
		}
	})

	t.Run("[Unit] hmac derive: random salt when omitted", func(t *testing.T) {
		t.Setenv("TOKEN_PASSPHRASE", "correct horse battery staple")

		resetGlobalFlags()
		resetHMACFlags()
		out := tc.path("derived-random.b64")
		_, err := executeCommand(rootCmd, "hmac", "derive",
			"--passphrase-env", "TOKEN_PASSPHRASE",
			"--iterations", "1000",
			"--out", out)
		assertNoError(t, err)
		assertFileNotEmpty(t, out)
	})

	t.Run("[Unit] hmac derive: unset passphrase variable", func(t *testing.T) {
		resetGlobalFlags()
		resetHMACFlags()

		_, err := executeCommand(rootCmd, "hmac", "derive",
			"--passphrase-env", "TOKEN_PASSPHRASE_UNSET",
			"--out", tc.path("x.b64"))
		assertError(t, err)
	})

	t.Run("[Unit] hmac derive: invalid salt hex", func(t *testing.T) {
		t.Setenv("TOKEN_PASSPHRASE", "pass")

		resetGlobalFlags()
		resetHMACFlags()
		_, err := executeCommand(rootCmd, "hmac", "derive",
			"--passphrase-env", "TOKEN_PASSPHRASE",
			"--salt", "zz-not-hex",
			"--out", tc.path("x.b64"))
		assertError(t, err)
	})
}
