package workflow

import (
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/shopspring/decimal"
)

// approvalCeilings caps the amount each role may approve. A missing entry
// means the role may not approve at all; a nil ceiling means unbounded.
var approvalCeilings = map[models.UserRole]*decimal.Decimal{
	models.UserRoleMinistereAdmin: nil,
	models.UserRoleDirecteur:      nil,
	models.UserRoleChefFinancier:  ptrDecimal(decimal.NewFromInt(10_000_000)),
}

func ptrDecimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// CheckApprovalLimit verifies the role may approve the given amount.
// Exceeding the ceiling is a hard error, never a silent cap.
func CheckApprovalLimit(role models.UserRole, amount decimal.Decimal) error {
	ceiling, ok := approvalCeilings[role]
	if !ok {
		return utils.Denied("role " + string(role) + " may not approve allocations")
	}
	if ceiling == nil {
		return nil
	}
	if amount.GreaterThan(*ceiling) {
		return utils.ErrApprovalLimitExceeded
	}
	return nil
}
