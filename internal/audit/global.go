package audit

import (
	"fmt"
	"sync"
)

var (
	// globalWriter is the default audit writer.
	globalWriter Writer = NopWriter{}
	globalMu     sync.RWMutex

	// enabled tracks whether audit logging is active.
	enabled bool
)

// Init initializes the global audit logger with the given writer.
// Must be called before any audit events are logged.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		enabled = false
		return nil
	}

	globalWriter = w
	enabled = true
	return nil
}

// InitFile initializes the global audit logger with a file writer.
// This is a convenience function for the common case.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Attach adds a sink to the global audit logger. When logging is
// disabled the sink becomes the sole writer; otherwise events fan out
// to the current writer and the new sink through a MultiWriter.
func Attach(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		return fmt.Errorf("audit: cannot attach nil writer")
	}
	if !enabled {
		globalWriter = w
		enabled = true
		return nil
	}
	globalWriter = NewMultiWriter(globalWriter, w)
	return nil
}

// FilePath returns the path of the file-backed sink the global logger
// writes to, or "" when logging is disabled or the writer is not a
// single file.
func FilePath() string {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if fw, ok := globalWriter.(*FileWriter); ok {
		return fw.Path()
	}
	return ""
}

// Close closes the global audit writer.
// Should be called when the application exits.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalWriter != nil {
		err := globalWriter.Close()
		globalWriter = NopWriter{}
		enabled = false
		return err
	}
	return nil
}

// Enabled returns whether audit logging is active.
func Enabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return enabled
}

// Log writes an audit event to the global writer.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// MustLog writes an audit event and returns an error suitable for
// failing the parent operation if audit logging fails.
func MustLog(event *Event) error {
	if err := Log(event); err != nil {
		return fmt.Errorf("audit log failed: %w", err)
	}
	return nil
}

// LogTokenSigned logs a token issuance event.
func LogTokenSigned(profile, algorithm, keyID, tokenID, subject string, success bool) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventTokenSigned, result).
		WithObject(Object{
			Type:    "token",
			ID:      tokenID,
			Subject: subject,
		}).
		WithContext(Context{
			Profile:   profile,
			Algorithm: algorithm,
			KeyID:     keyID,
		})

	return MustLog(event)
}

// LogTokenVerified logs a token verification event.
func LogTokenVerified(algorithm, tokenID string, verified bool, reason string) error {
	result := ResultSuccess
	if !verified {
		result = ResultFailure
	}

	event := NewEvent(EventTokenVerified, result).
		WithObject(Object{
			Type: "token",
			ID:   tokenID,
		}).
		WithContext(Context{
			Algorithm: algorithm,
			Verified:  verified,
			Reason:    reason,
		})

	return MustLog(event)
}

// LogKeyGenerated logs a key generation event.
func LogKeyGenerated(keyID, algorithm, path string, success bool) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventKeyGenerated, result).
		WithObject(Object{
			Type: "key",
			ID:   keyID,
			Path: path,
		}).
		WithContext(Context{
			Algorithm: algorithm,
			KeyID:     keyID,
		})

	return MustLog(event)
}

// LogKeyImported logs a key import event (PEM or PKCS#12).
func LogKeyImported(keyID, algorithm, path string, success bool, reason string) error {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}

	event := NewEvent(EventKeyImported, result).
		WithObject(Object{
			Type: "key",
			ID:   keyID,
			Path: path,
		}).
		WithContext(Context{
			Algorithm: algorithm,
			KeyID:     keyID,
			Reason:    reason,
		})

	return MustLog(event)
}

// LogServeStarted logs an API server start event.
func LogServeStarted(address string) error {
	event := NewEvent(EventServeStarted, ResultSuccess).
		WithObject(Object{
			Type: "service",
		}).
		WithContext(Context{
			Address: address,
		})

	return MustLog(event)
}
