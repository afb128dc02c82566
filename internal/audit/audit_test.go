package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Test Helpers
// =============================================================================

func writeEvents(t *testing.T, path string, n int) {
	t.Helper()

	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer w.Close()

	for i := 0; i < n; i++ {
		ev := NewEvent(EventTokenSigned, ResultSuccess).
			WithObject(Object{Type: "token", ID: "tok-1", Subject: "alice"}).
			WithContext(Context{Profile: "api-access", Algorithm: "ES256"})
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
}

// =============================================================================
// Hash Chain Tests
// =============================================================================

func TestWriteAndVerifyChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	writeEvents(t, path, 5)

	count, err := VerifyChain(path)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if count != 5 {
		t.Errorf("verified %d events, want 5", count)
	}
}

func TestVerifyChain_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create empty log: %v", err)
	}

	count, err := VerifyChain(path)
	if err != nil {
		t.Errorf("VerifyChain() error = %v, empty log should be valid", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestVerifyChain_TamperedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	writeEvents(t, path, 3)

	// Rewrite the subject of the second event without fixing its hash.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	lines[1] = strings.Replace(lines[1], "alice", "eve", 1)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("failed to write tampered log: %v", err)
	}

	count, err := VerifyChain(path)
	if err == nil {
		t.Fatal("VerifyChain() passed on a tampered log")
	}
	if count != 1 {
		t.Errorf("valid prefix = %d events, want 1", count)
	}
}

func TestVerifyChain_DeletedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	writeEvents(t, path, 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Drop the middle event; the chain must not survive the splice.
	spliced := lines[0] + "\n" + lines[2] + "\n"
	if err := os.WriteFile(path, []byte(spliced), 0600); err != nil {
		t.Fatalf("failed to write spliced log: %v", err)
	}

	if _, err := VerifyChain(path); err == nil {
		t.Error("VerifyChain() passed after an event was removed")
	}
}

func TestFileWriter_ChainContinuity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	// Two writer sessions against the same file: the second must pick up
	// the chain where the first left off.
	writeEvents(t, path, 2)
	writeEvents(t, path, 2)

	count, err := VerifyChain(path)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if count != 4 {
		t.Errorf("verified %d events, want 4", count)
	}
}

func TestFileWriter_HashFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	writeEvents(t, path, 1)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var ev Event
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if !scanner.Scan() {
		t.Fatal("log has no lines")
	}
	if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
		t.Fatalf("event is not JSON: %v", err)
	}

	if ev.HashPrev != GenesisHash {
		t.Errorf("hash_prev = %q, want genesis", ev.HashPrev)
	}
	if !strings.HasPrefix(ev.Hash, HashPrefix) {
		t.Errorf("hash = %q, missing %q prefix", ev.Hash, HashPrefix)
	}
	if ev.Timestamp == "" {
		t.Error("timestamp is empty")
	}
}

func TestFileWriter_RejectsInvalidEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer w.Close()

	if err := w.Write(&Event{}); err == nil {
		t.Error("Write() accepted an event without required fields")
	}
}

// =============================================================================
// Event Tests
// =============================================================================

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{"complete", func(e *Event) {}, false},
		{"no type", func(e *Event) { e.EventType = "" }, true},
		{"no timestamp", func(e *Event) { e.Timestamp = "" }, true},
		{"no actor", func(e *Event) { e.Actor = Actor{} }, true},
		{"no result", func(e *Event) { e.Result = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvent(EventKeyGenerated, ResultSuccess)
			tt.mutate(ev)
			err := ev.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanonicalJSON_ExcludesHash(t *testing.T) {
	ev := NewEvent(EventTokenVerified, ResultSuccess)
	ev.Hash = "sha256:deadbeef"

	canonical, err := ev.CanonicalJSON()
	if err != nil {
		t.Fatalf("CanonicalJSON() error = %v", err)
	}
	if strings.Contains(string(canonical), "deadbeef") {
		t.Error("canonical form includes the hash it feeds")
	}
}

// =============================================================================
// Global Writer Tests
// =============================================================================

func TestGlobalInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	if Enabled() {
		t.Fatal("audit enabled before Init")
	}
	if err := InitFile(path); err != nil {
		t.Fatalf("InitFile() error = %v", err)
	}
	defer Close()

	if !Enabled() {
		t.Error("Enabled() = false after InitFile")
	}
	if err := LogTokenSigned("api-access", "ES256", "key-1", "tok-1", "alice", true); err != nil {
		t.Errorf("LogTokenSigned() error = %v", err)
	}
	if err := LogTokenVerified("ES256", "tok-1", false, "signature invalid"); err != nil {
		t.Errorf("LogTokenVerified() error = %v", err)
	}
	if err := LogServeStarted("127.0.0.1:8440"); err != nil {
		t.Errorf("LogServeStarted() error = %v", err)
	}

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if Enabled() {
		t.Error("Enabled() = true after Close")
	}

	count, err := VerifyChain(path)
	if err != nil {
		t.Fatalf("VerifyChain() error = %v", err)
	}
	if count != 3 {
		t.Errorf("verified %d events, want 3", count)
	}
}

func TestGlobalLog_DisabledIsNop(t *testing.T) {
	// With no writer configured, logging succeeds silently.
	if err := LogKeyGenerated("key-1", "RS256", "/tmp/key.pem", true); err != nil {
		t.Errorf("LogKeyGenerated() error = %v with audit disabled", err)
	}
}

func TestGlobalAttach_FansOutToSecondFile(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "session.log")
	secondary := filepath.Join(dir, "server.log")

	if err := InitFile(primary); err != nil {
		t.Fatalf("InitFile() error = %v", err)
	}
	defer Close()

	if got := FilePath(); got != primary {
		t.Errorf("FilePath() = %q, want %q", got, primary)
	}

	w, err := NewFileWriter(secondary)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	if err := Attach(w); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	// After fan-out the global writer is no longer a single file.
	if got := FilePath(); got != "" {
		t.Errorf("FilePath() = %q after Attach, want empty", got)
	}

	if err := LogTokenSigned("api-access", "ES256", "key-1", "tok-1", "alice", true); err != nil {
		t.Fatalf("LogTokenSigned() error = %v", err)
	}
	if err := LogTokenVerified("ES256", "tok-1", true, ""); err != nil {
		t.Fatalf("LogTokenVerified() error = %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for _, path := range []string{primary, secondary} {
		count, err := VerifyChain(path)
		if err != nil {
			t.Fatalf("VerifyChain(%s) error = %v", path, err)
		}
		if count != 2 {
			t.Errorf("VerifyChain(%s) = %d events, want 2", path, count)
		}
	}
}

func TestGlobalAttach_EnablesWhenDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	if err := Attach(w); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	defer Close()

	if !Enabled() {
		t.Error("Enabled() = false after Attach")
	}
	if err := LogServeStarted("127.0.0.1:8440"); err != nil {
		t.Errorf("LogServeStarted() error = %v", err)
	}
}

// =============================================================================
// Multi-Writer Tests
// =============================================================================

// failingWriter fails every write with a fixed error.
type failingWriter struct {
	err error
}

func (w *failingWriter) Write(*Event) error { return w.err }
func (w *failingWriter) Close() error       { return nil }
func (w *failingWriter) LastHash() string   { return GenesisHash }

func TestMultiWriter_EachSinkKeepsItsOwnChain(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.log")
	pathB := filepath.Join(dir, "b.log")

	a, err := NewFileWriter(pathA)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	b, err := NewFileWriter(pathB)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}

	mw := NewMultiWriter(a, b)
	for i := 0; i < 3; i++ {
		ev := NewEvent(EventTokenSigned, ResultSuccess).
			WithObject(Object{Type: "token", ID: "tok-1", Subject: "alice"}).
			WithContext(Context{Profile: "api-access", Algorithm: "ES256"})
		if err := mw.Write(ev); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got, want := mw.LastHash(), a.LastHash(); got != want {
		t.Errorf("LastHash() = %q, want first sink's %q", got, want)
	}

	for _, path := range []string{pathA, pathB} {
		count, err := VerifyChain(path)
		if err != nil {
			t.Fatalf("VerifyChain(%s) error = %v", path, err)
		}
		if count != 3 {
			t.Errorf("VerifyChain(%s) = %d events, want 3", path, count)
		}
	}
}

func TestMultiWriter_SinkFailureFailsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")
	a, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer a.Close()

	sinkErr := errors.New("disk full")
	mw := NewMultiWriter(a, &failingWriter{err: sinkErr})

	ev := NewEvent(EventTokenSigned, ResultSuccess).
		WithObject(Object{Type: "token", ID: "tok-1", Subject: "alice"}).
		WithContext(Context{Algorithm: "ES256"})
	if err := mw.Write(ev); !errors.Is(err, sinkErr) {
		t.Errorf("Write() error = %v, want %v", err, sinkErr)
	}
}

func TestMultiWriter_EmptyLastHashIsGenesis(t *testing.T) {
	mw := NewMultiWriter()
	if got := mw.LastHash(); got != GenesisHash {
		t.Errorf("LastHash() = %q, want %q", got, GenesisHash)
	}
}
