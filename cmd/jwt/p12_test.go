package main

// Note: t.Parallel() is not used because Cobra commands share global flag state.

import (
	"os"
	"testing"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// writeTestArchive fabricates a PKCS#12 archive holding an RSA identity.
func writeTestArchive(t *testing.T, tc *testContext, name, passphrase string) string {
	t.Helper()

	priv, _ := generateRSAKeyPair(t)
	cert := generateSelfSignedCert(t, priv)

	archive, err := pkcs12.Modern.Encode(priv, cert, nil, passphrase)
	if err != nil {
		t.Fatalf("failed to encode archive: %v", err)
	}

	path := tc.path(name)
	if err := os.WriteFile(path, archive, 0600); err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}
	return path
}

func TestU_runP12Inspect(t *testing.T) {
	tc := newTestContext(t)
	archivePath := writeTestArchive(t, tc, "identity.p12", "changeit")

	t.Run("[Unit] p12 inspect: RSA identity", func(t *testing.T) {
		resetGlobalFlags()
		resetP12Flags()

		_, err := executeCommand(rootCmd, "p12", "inspect", archivePath,
			"--passphrase", "changeit")
		assertNoError(t, err)
	})

	t.Run("[Unit] p12 inspect: exports public key", func(t *testing.T) {
		resetGlobalFlags()
		resetP12Flags()

		pubPath := tc.path("archive-pub.pem")
		_, err := executeCommand(rootCmd, "p12", "inspect", archivePath,
			"--passphrase", "changeit",
			"--out-pub", pubPath)
		assertNoError(t, err)
		assertFileNotEmpty(t, pubPath)
	})

	t.Run("[Unit] p12 inspect: wrong passphrase", func(t *testing.T) {
		resetGlobalFlags()
		resetP12Flags()

		_, err := executeCommand(rootCmd, "p12", "inspect", archivePath,
			"--passphrase", "wrong")
		assertError(t, err)
	})

	t.Run("[Unit] p12 inspect: missing archive", func(t *testing.T) {
		resetGlobalFlags()
		resetP12Flags()

		_, err := executeCommand(rootCmd, "p12", "inspect", tc.path("missing.p12"))
		assertError(t, err)
	})
}

func TestU_signWithPKCS12(t *testing.T) {
	tc := newTestContext(t)
	archivePath := writeTestArchive(t, tc, "signer.p12", "changeit")

	t.Run("[Unit] sign: PKCS#12 identity defaults to RS256", func(t *testing.T) {
		resetGlobalFlags()
		resetSignFlags()

		tokenPath := tc.path("rsa.jwt")
		_, err := executeCommand(rootCmd, "sign",
			"--p12", archivePath,
			"--passphrase", "changeit",
			"--sub", "service-account",
			"--exp", "15m",
			"--out", tokenPath)
		assertNoError(t, err)
		assertFileNotEmpty(t, tokenPath)
	})

	t.Run("[Unit] verify: PKCS#12 identity verifies its own token", func(t *testing.T) {
		resetGlobalFlags()
		resetSignFlags()
		tokenPath := tc.path("roundtrip.jwt")
		_, err := executeCommand(rootCmd, "sign",
			"--p12", archivePath,
			"--passphrase", "changeit",
			"--sub", "service-account",
			"--exp", "15m",
			"--out", tokenPath)
		assertNoError(t, err)

		resetGlobalFlags()
		resetVerifyFlags()
		_, err = executeCommand(rootCmd, "verify", "@"+tokenPath,
			"--p12", archivePath,
			"--passphrase", "changeit")
		assertNoError(t, err)
	})

	t.Run("[Unit] sign: PKCS#12 rejects non-RSA algorithm", func(t *testing.T) {
		resetGlobalFlags()
		resetSignFlags()

		_, err := executeCommand(rootCmd, "sign",
			"--p12", archivePath,
			"--passphrase", "changeit",
			"--algorithm", "ES256",
			"--sub", "service-account",
			"--out", tc.path("bad.jwt"))
		assertError(t, err)
	})
}
