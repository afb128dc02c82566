package audit

import "io"

// Writer persists token-operation audit events.
//
// Implementations MUST:
//   - Fail the write loudly (a lost audit event fails the operation)
//   - Flush to stable storage before returning from Write
//   - Maintain the hash chain (set HashPrev and Hash on each event)
//   - Never record secrets (HMAC secrets, private keys, passphrases)
type Writer interface {
	// Write validates the event, links it into the hash chain and
	// persists it. Any failed step fails the write.
	Write(event *Event) error

	// Close flushes pending events and releases the sink.
	Close() error

	// LastHash returns the hash of the most recent event, or
	// GenesisHash when the sink holds no events yet.
	LastHash() string
}

// NopWriter discards all events. It backs the global logger whenever
// audit logging is disabled, so call sites never nil-check.
type NopWriter struct{}

var _ Writer = (*NopWriter)(nil)

func (NopWriter) Write(*Event) error { return nil }
func (NopWriter) Close() error       { return nil }
func (NopWriter) LastHash() string   { return GenesisHash }

// MultiWriter fans each event out to several sinks. The serve path uses
// it when the CLI session log and the server-config log differ: both
// files then record the same token operations, each with its own chain.
// A failure in any sink fails the write.
type MultiWriter struct {
	sinks []Writer
}

var _ Writer = (*MultiWriter)(nil)

// NewMultiWriter combines sinks into a single fan-out writer.
func NewMultiWriter(sinks ...Writer) *MultiWriter {
	return &MultiWriter{sinks: sinks}
}

func (m *MultiWriter) Write(event *Event) error {
	for _, w := range m.sinks {
		if err := w.Write(event); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) Close() error {
	var lastErr error
	for _, w := range m.sinks {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// LastHash reports the first sink's chain position. Each sink keeps its
// own chain; the first one is the primary for continuity checks.
func (m *MultiWriter) LastHash() string {
	if len(m.sinks) > 0 {
		return m.sinks[0].LastHash()
	}
	return GenesisHash
}

// Ensure Writer extends io.Closer for proper resource management.
var _ io.Closer = (Writer)(nil)
