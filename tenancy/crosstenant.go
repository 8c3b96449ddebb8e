package tenancy

import (
	"github.com/roufai-ne/crou-management-system-sub011/models"
)

// CrossTenantRules configure one cross-tenant check. Supplied inline by the
// call site; there is no persisted schema for these.
type CrossTenantRules struct {
	// RestrictedTenants are denied outright, regardless of role or scope.
	RestrictedTenants map[string]bool
	// RequiredRole, when set, must match the acting user's role exactly.
	RequiredRole string
}

// Verdict carries the cross-tenant decision and, on deny, a reason.
type Verdict struct {
	Allowed bool
	Reason  string
}

// ValidateCrossTenant decides whether source may reach targetTenantId.
// Decision order: restriction list, then required role, then the ministry
// blanket grant. Cross-tenant access is never implicit: a plain crou tenant
// with no matching grant is denied.
func ValidateCrossTenant(tc *TenantContext, targetTenantId string, rules CrossTenantRules) Verdict {
	if tc == nil {
		return Verdict{Allowed: false, Reason: "no tenant context"}
	}

	if rules.RestrictedTenants[targetTenantId] {
		return Verdict{Allowed: false, Reason: "tenant is explicitly restricted"}
	}

	if rules.RequiredRole != "" && tc.UserRole != rules.RequiredRole {
		return Verdict{Allowed: false, Reason: "role " + tc.UserRole + " may not cross tenants here"}
	}

	if tc.TenantType == models.TenantTypeMinistere {
		return Verdict{Allowed: true}
	}

	if tc.CanAccessTenant(targetTenantId) {
		return Verdict{Allowed: true}
	}

	return Verdict{Allowed: false, Reason: "cross-tenant access must be explicitly granted"}
}
