package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

// NOTE: These tests are intentionally DB-free. The audit writer is never
// started, so Authorize's logging path drops entries instead of touching MySQL.

func crouContext(tenantId string, extra ...string) *TenantContext {
	accessible := map[string]bool{tenantId: true}
	for _, id := range extra {
		accessible[id] = true
	}
	return &TenantContext{
		TenantId:            tenantId,
		TenantType:          models.TenantTypeCrou,
		AccessibleTenantIds: accessible,
		AccessScope:         models.AccessScopeSingle,
		UserId:              7,
		UserRole:            string(models.UserRoleDirecteur),
	}
}

func ministereContext(accessible ...string) *TenantContext {
	ids := map[string]bool{}
	for _, id := range accessible {
		ids[id] = true
	}
	return &TenantContext{
		TenantId:            "ministere-1",
		TenantType:          models.TenantTypeMinistere,
		AccessibleTenantIds: ids,
		AccessScope:         models.AccessScopeMinistere,
		UserId:              1,
		UserRole:            string(models.UserRoleMinistereAdmin),
	}
}

func TestAuthorize_SameTenantAllowed(t *testing.T) {
	tc := crouContext("crou-niamey")
	d := Authorize(context.Background(), tc, "crou-niamey", FilterOptions{Resource: "allocations"})
	if !d.Allowed {
		t.Fatalf("same-tenant access denied: %s", d.Reason)
	}
	if d.Unfiltered {
		t.Fatal("same-tenant access must stay filtered")
	}
}

func TestAuthorize_CrossTenantDefaultDeny(t *testing.T) {
	tc := crouContext("crou-niamey")
	d := Authorize(context.Background(), tc, "crou-zinder", FilterOptions{})
	if d.Allowed {
		t.Fatal("cross-tenant access allowed without AllowCrossTenant")
	}
}

func TestAuthorize_CrossTenantDeniedWithoutGrant(t *testing.T) {
	// AllowCrossTenant opens the path, but a plain crou context still needs
	// an explicit grant for the target.
	tc := crouContext("crou-niamey")
	d := Authorize(context.Background(), tc, "crou-zinder", FilterOptions{AllowCrossTenant: true})
	if d.Allowed {
		t.Fatalf("ungranted cross-tenant access allowed")
	}
}

func TestAuthorize_CrossTenantAllowedWithGrant(t *testing.T) {
	tc := crouContext("crou-niamey", "crou-zinder")
	d := Authorize(context.Background(), tc, "crou-zinder", FilterOptions{AllowCrossTenant: true})
	if !d.Allowed {
		t.Fatalf("granted cross-tenant access denied: %s", d.Reason)
	}
}

func TestAuthorize_MinistereBypass(t *testing.T) {
	tc := ministereContext("crou-niamey")
	d := Authorize(context.Background(), tc, "crou-zinder", FilterOptions{BypassForExtendedAccess: true})
	if !d.Allowed {
		t.Fatalf("ministry bypass denied: %s", d.Reason)
	}
	if !d.Unfiltered {
		t.Fatal("ministry bypass must mark the decision unfiltered")
	}
}

func TestAuthorize_RestrictionBeatsMinistereBypass(t *testing.T) {
	tc := ministereContext("crou-niamey", "crou-zinder")
	opts := FilterOptions{
		BypassForExtendedAccess: true,
		Rules: CrossTenantRules{
			RestrictedTenants: map[string]bool{"crou-zinder": true},
		},
	}
	d := Authorize(context.Background(), tc, "crou-zinder", opts)
	if d.Allowed {
		t.Fatal("restriction list must outrank the ministry bypass")
	}

	// the restriction is per tenant, not a blanket off switch
	d = Authorize(context.Background(), tc, "crou-niamey", opts)
	if !d.Allowed {
		t.Fatalf("unrestricted tenant denied: %s", d.Reason)
	}
}

func TestAuthorize_EmptyTenantId(t *testing.T) {
	tc := crouContext("crou-niamey")

	d := Authorize(context.Background(), tc, "", FilterOptions{})
	if !d.Allowed {
		t.Fatalf("legacy record without tenant id denied in lax mode: %s", d.Reason)
	}

	d = Authorize(context.Background(), tc, "", FilterOptions{StrictMode: true})
	if d.Allowed {
		t.Fatal("strict mode must reject records without a tenant id")
	}
}

func TestAuthorize_NilContext(t *testing.T) {
	d := Authorize(context.Background(), nil, "crou-niamey", FilterOptions{BypassForExtendedAccess: true})
	if d.Allowed {
		t.Fatal("nil tenant context must be denied")
	}
}

func TestRequireAccess_ReturnsDeniedError(t *testing.T) {
	tc := crouContext("crou-niamey")
	err := RequireAccess(context.Background(), tc, "crou-zinder", FilterOptions{})
	if err == nil {
		t.Fatal("expected denial")
	}
	if !utils.IsDenied(err) {
		t.Fatalf("expected DeniedError, got %v", err)
	}

	if err := RequireAccess(context.Background(), tc, "crou-niamey", FilterOptions{}); err != nil {
		t.Fatalf("same-tenant access returned error: %v", err)
	}
}

func TestResolve_RejectsAnonymousAndTenantless(t *testing.T) {
	r := NewResolver()

	if _, err := r.Resolve(context.Background(), nil); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Fatalf("nil identity: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), &Identity{}); !errors.Is(err, utils.ErrUnauthenticated) {
		t.Fatalf("zero identity: expected ErrUnauthenticated, got %v", err)
	}
	_, err := r.Resolve(context.Background(), &Identity{UserId: 9, Username: "a.issa", Role: string(models.UserRoleAgent)})
	if !errors.Is(err, utils.ErrTenantContextMissing) {
		t.Fatalf("agent without crou: expected ErrTenantContextMissing, got %v", err)
	}
}

func TestResolve_SingleScopeForCrouUser(t *testing.T) {
	r := NewResolver()
	tc, err := r.Resolve(context.Background(), &Identity{
		UserId:   9,
		Username: "a.issa",
		Role:     string(models.UserRoleChefFinancier),
		CrouId:   "crou-niamey",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.AccessScope != models.AccessScopeSingle {
		t.Fatalf("expected single scope, got %s", tc.AccessScope)
	}
	if tc.TenantType != models.TenantTypeCrou {
		t.Fatalf("expected crou tenant type, got %s", tc.TenantType)
	}
	if !tc.CanAccessTenant("crou-niamey") || tc.CanAccessTenant("crou-zinder") {
		t.Fatal("single scope must cover exactly the user's own tenant")
	}
}
