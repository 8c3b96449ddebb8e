package tenancy

import (
	"testing"

	"github.com/roufai-ne/crou-management-system-sub011/models"
)

func TestValidateCrossTenant_RestrictionOutranksEverything(t *testing.T) {
	rules := CrossTenantRules{RestrictedTenants: map[string]bool{"crou-agadez": true}}

	// even a ministry context is stopped by the restriction list
	v := ValidateCrossTenant(ministereContext(), "crou-agadez", rules)
	if v.Allowed {
		t.Fatal("restricted tenant reachable by ministry context")
	}

	v = ValidateCrossTenant(crouContext("crou-niamey", "crou-agadez"), "crou-agadez", rules)
	if v.Allowed {
		t.Fatal("restricted tenant reachable via explicit grant")
	}
}

func TestValidateCrossTenant_RequiredRole(t *testing.T) {
	rules := CrossTenantRules{RequiredRole: string(models.UserRoleDirecteur)}

	tc := crouContext("crou-niamey", "crou-zinder")
	tc.UserRole = string(models.UserRoleAgent)
	if v := ValidateCrossTenant(tc, "crou-zinder", rules); v.Allowed {
		t.Fatal("role mismatch allowed")
	}

	tc.UserRole = string(models.UserRoleDirecteur)
	if v := ValidateCrossTenant(tc, "crou-zinder", rules); !v.Allowed {
		t.Fatalf("matching role denied: %s", v.Reason)
	}
}

func TestValidateCrossTenant_MinistereBlanketGrant(t *testing.T) {
	// ministry scope reaches tenants that never appear in its accessible set
	v := ValidateCrossTenant(ministereContext(), "crou-maradi", CrossTenantRules{})
	if !v.Allowed {
		t.Fatalf("ministry context denied: %s", v.Reason)
	}
}

func TestValidateCrossTenant_DefaultDeny(t *testing.T) {
	v := ValidateCrossTenant(crouContext("crou-niamey"), "crou-zinder", CrossTenantRules{})
	if v.Allowed {
		t.Fatal("cross-tenant access must be explicitly granted")
	}
	if v.Reason == "" {
		t.Fatal("denial must carry a reason")
	}

	if v := ValidateCrossTenant(nil, "crou-zinder", CrossTenantRules{}); v.Allowed {
		t.Fatal("nil context allowed")
	}
}
