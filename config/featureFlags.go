package config

import (
	"os"
	"strings"
)

// StrictTenantMode controls how records lacking a crou_id are treated by the
// isolation filter: in strict mode they are rejected, otherwise passed through.
//
// Set via env:
// - STRICT_TENANT_MODE=true
func StrictTenantMode() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_TENANT_MODE")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// DisableAuditTrail turns off the async audit writer (load tests only).
//
// Set via env:
// - DISABLE_AUDIT_TRAIL=true
func DisableAuditTrail() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("DISABLE_AUDIT_TRAIL")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
