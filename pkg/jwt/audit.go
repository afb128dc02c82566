// This file exposes audit logging from internal/audit.
package jwt

import (
	"github.com/EdibuLLC/JSONWebToken/internal/audit"
)

// Re-export audit types
type (
	// AuditEvent is a single audit log entry.
	AuditEvent = audit.Event

	// AuditWriter persists audit events.
	AuditWriter = audit.Writer
)

// InitAuditFile initializes the global audit logger with a file writer.
func InitAuditFile(path string) error {
	return audit.InitFile(path)
}

// CloseAudit closes the global audit writer.
func CloseAudit() error {
	return audit.Close()
}

// VerifyAuditChain verifies the hash chain of an audit log file and
// returns the number of valid events.
func VerifyAuditChain(path string) (int, error) {
	return audit.VerifyChain(path)
}
