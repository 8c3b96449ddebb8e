package workflow

import (
	"errors"
	"testing"

	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/shopspring/decimal"
)

func TestCheckApprovalLimit_ChefFinancierCeiling(t *testing.T) {
	// at the ceiling is fine, past it is a hard error
	if err := CheckApprovalLimit(models.UserRoleChefFinancier, decimal.NewFromInt(10_000_000)); err != nil {
		t.Fatalf("amount at ceiling rejected: %v", err)
	}
	err := CheckApprovalLimit(models.UserRoleChefFinancier, decimal.NewFromInt(15_000_000))
	if !errors.Is(err, utils.ErrApprovalLimitExceeded) {
		t.Fatalf("expected ErrApprovalLimitExceeded, got %v", err)
	}
}

func TestCheckApprovalLimit_UnboundedRoles(t *testing.T) {
	huge := decimal.NewFromInt(1_000_000_000_000)
	for _, role := range []models.UserRole{models.UserRoleMinistereAdmin, models.UserRoleDirecteur} {
		if err := CheckApprovalLimit(role, huge); err != nil {
			t.Fatalf("%s should be unbounded, got %v", role, err)
		}
	}
}

func TestCheckApprovalLimit_UnknownRoleMayNotApprove(t *testing.T) {
	for _, role := range []models.UserRole{models.UserRoleAgent, models.UserRoleChefHebergmt, models.UserRole("stagiaire")} {
		err := CheckApprovalLimit(role, decimal.NewFromInt(1))
		if err == nil {
			t.Fatalf("%s approved without a ceiling entry", role)
		}
		if !utils.IsDenied(err) {
			t.Fatalf("%s: expected DeniedError, got %v", role, err)
		}
	}
}
