package reports

import (
	"context"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/shopspring/decimal"
)

type AllocationSummaryResponse struct {
	CrouId        string          `json:"crou_id"`
	CrouName      string          `json:"crou_name"`
	CrouCode      string          `json:"crou_code"`
	TotalReceived decimal.Decimal `json:"total_received"`
	TotalExecuted decimal.Decimal `json:"total_executed"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	Count         int             `json:"count"`
}

// GetAllocationSummaryReport aggregates budget allocations per tenant.
// Raw SQL: tenant scoping is applied through the crouId argument (empty for
// ministry-wide reports); the tenant guard does not rewrite raw queries.
func GetAllocationSummaryReport(ctx context.Context, crouId string, fiscalYear string) ([]*AllocationSummaryResponse, error) {

	sql := `
SELECT
    allocations.crou_id,
    crous.name AS crou_name,
    crous.code AS crou_code,
    COALESCE(SUM(CASE WHEN allocations.status NOT IN ('Cancelled', 'Rejected') THEN allocations.amount ELSE 0 END), 0) AS total_received,
    COALESCE(SUM(CASE WHEN allocations.status = 'Executed' THEN allocations.amount ELSE 0 END), 0) AS total_executed,
    COALESCE(SUM(CASE WHEN allocations.status IN ('Submitted', 'Pending') THEN allocations.amount ELSE 0 END), 0) AS total_pending,
    COUNT(allocations.id) AS count
FROM allocations
    LEFT JOIN crous ON crous.id = allocations.crou_id
WHERE allocations.type = 'Budget'
    AND (? = '' OR allocations.crou_id = ?)
    AND (? = '' OR allocations.fiscal_year = ?)
GROUP BY allocations.crou_id
ORDER BY crous.code;
`

	var records []*AllocationSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, crouId, crouId, fiscalYear, fiscalYear).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
