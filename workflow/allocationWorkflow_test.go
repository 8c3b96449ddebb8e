package workflow

import (
	"context"
	"testing"

	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/shopspring/decimal"
)

func ministereTestContext() *tenancy.TenantContext {
	return &tenancy.TenantContext{
		TenantId:    "ministere-1",
		TenantType:  models.TenantTypeMinistere,
		AccessScope: models.AccessScopeMinistere,
		UserId:      1,
		UserRole:    string(models.UserRoleMinistereAdmin),
	}
}

func TestCreateRootAllocation_RejectsNonMinistry(t *testing.T) {
	engine := NewEngine()
	tc := &tenancy.TenantContext{
		TenantId:   "crou-a",
		TenantType: models.TenantTypeCrou,
		UserId:     2,
		UserRole:   string(models.UserRoleDirecteur),
	}
	_, err := engine.CreateRootAllocation(context.Background(), tc, &models.NewAllocation{
		Type:    models.AllocationTypeBudget,
		CrouId:  "crou-a",
		Libelle: "subvention",
		Amount:  decimal.NewFromInt(1000),
	})
	if !utils.IsDenied(err) {
		t.Fatalf("expected DeniedError, got %v", err)
	}
}

func TestCreateRootAllocation_RejectsNonPositiveMagnitude(t *testing.T) {
	engine := NewEngine()
	cases := []*models.NewAllocation{
		{Type: models.AllocationTypeBudget, CrouId: "ministere-1", Libelle: "subvention"},
		{Type: models.AllocationTypeBudget, CrouId: "ministere-1", Libelle: "subvention", Amount: decimal.NewFromInt(-500)},
		{Type: models.AllocationTypeStock, CrouId: "ministere-1", Libelle: "riz", Quantity: decimal.Zero},
	}
	for _, input := range cases {
		_, err := engine.CreateRootAllocation(context.Background(), ministereTestContext(), input)
		if !utils.IsValidation(err) {
			t.Fatalf("%s %s: expected ValidationError, got %v", input.Type, input.Libelle, err)
		}
	}
}

func TestCancelAllocation_RequiresReason(t *testing.T) {
	engine := NewEngine()
	_, err := engine.CancelAllocation(context.Background(), ministereTestContext(), 1, "")
	if !utils.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
