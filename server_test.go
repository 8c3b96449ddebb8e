package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

func testGinContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{utils.ErrUnauthenticated, http.StatusUnauthorized},
		{utils.ErrTenantContextMissing, http.StatusForbidden},
		{utils.Denied("cross-tenant access not granted"), http.StatusForbidden},
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{fmt.Errorf("target tenant crou-x: %w", utils.ErrorRecordNotFound), http.StatusNotFound},
		{utils.ErrInvalidTransition, http.StatusBadRequest},
		{utils.ErrAllocationOverrun, http.StatusBadRequest},
		{utils.ErrApprovalLimitExceeded, http.StatusBadRequest},
		{utils.Validation("rejection requires a reason"), http.StatusBadRequest},
		{utils.Validation("allocation amount must be positive"), http.StatusBadRequest},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, w := testGinContext(t, "/")
		respondError(c, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status %d, expected %d", tc.err, w.Code, tc.status)
		}
	}
}

func TestRespondError_ValidationMessageSurfaces(t *testing.T) {
	c, w := testGinContext(t, "/")
	respondError(c, utils.Validation("cancellation requires a reason"))
	if !strings.Contains(w.Body.String(), "cancellation requires a reason") {
		t.Fatalf("validation reason missing from body: %s", w.Body.String())
	}
}

func TestRespondError_InternalDoesNotLeak(t *testing.T) {
	c, w := testGinContext(t, "/")
	respondError(c, errors.New("dial tcp 10.0.0.5:3306: connect: connection refused"))
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}

func TestReportTenantScope_MinistryDefaultsToNetworkWide(t *testing.T) {
	c, _ := testGinContext(t, "/api/reports/occupancy/excel")
	tc := &tenancy.TenantContext{
		TenantId:    "ministere-1",
		TenantType:  models.TenantTypeMinistere,
		AccessScope: models.AccessScopeMinistere,
	}
	crouId, ok := reportTenantScope(c, tc)
	if !ok {
		t.Fatal("ministry scope refused")
	}
	if crouId != "" {
		t.Fatalf("ministry without ?crou_id= must cover every tenant, got %q", crouId)
	}
}

func TestReportTenantScope_MinistryMayTargetOneTenant(t *testing.T) {
	c, _ := testGinContext(t, "/api/reports/occupancy/excel?crou_id=crou-a")
	tc := &tenancy.TenantContext{
		TenantId:    "ministere-1",
		TenantType:  models.TenantTypeMinistere,
		AccessScope: models.AccessScopeMinistere,
	}
	crouId, ok := reportTenantScope(c, tc)
	if !ok || crouId != "crou-a" {
		t.Fatalf("got %q ok=%v, expected crou-a", crouId, ok)
	}
}

func TestReportTenantScope_CrouUserPinnedToOwnTenant(t *testing.T) {
	c, _ := testGinContext(t, "/api/reports/allocations/excel")
	tc := &tenancy.TenantContext{
		TenantId:            "crou-a",
		TenantType:          models.TenantTypeCrou,
		AccessScope:         models.AccessScopeSingle,
		AccessibleTenantIds: map[string]bool{"crou-a": true},
	}
	crouId, ok := reportTenantScope(c, tc)
	if !ok || crouId != "crou-a" {
		t.Fatalf("got %q ok=%v, expected crou-a", crouId, ok)
	}
}

func TestReportTenantScope_CrouUserDeniedOtherTenant(t *testing.T) {
	c, w := testGinContext(t, "/api/reports/allocations/excel?crou_id=crou-b")
	tc := &tenancy.TenantContext{
		TenantId:            "crou-a",
		TenantType:          models.TenantTypeCrou,
		AccessScope:         models.AccessScopeSingle,
		AccessibleTenantIds: map[string]bool{"crou-a": true},
		UserId:              7,
		UserRole:            string(models.UserRoleDirecteur),
	}
	if _, ok := reportTenantScope(c, tc); ok {
		t.Fatal("cross-tenant report scope granted without a grant")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, expected 403", w.Code)
	}
}
