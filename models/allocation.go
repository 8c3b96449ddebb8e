package models

import (
	"context"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Allocation is one node of a budget/stock cascade. Root allocations have no
// parent; children reference their parent, forming a forest. Rows are never
// deleted, only Cancelled.
type Allocation struct {
	ID                int              `gorm:"primary_key" json:"id"`
	Type              AllocationType   `gorm:"type:enum('Budget','Stock');not null" json:"type"`
	ParentId          *int             `gorm:"index" json:"parent_id"`
	CrouId            string           `gorm:"type:char(36);index;not null" json:"crou_id"`
	TargetTenantLevel TenantLevel      `gorm:"type:enum('national','regional');default:'regional'" json:"target_tenant_level"`
	Libelle           string           `gorm:"size:255" json:"libelle"`
	FiscalYear        string           `gorm:"size:10;index" json:"fiscal_year"`
	Amount            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Status            AllocationStatus `gorm:"type:enum('Draft','Submitted','Pending','Approved','Rejected','Executed','Cancelled');default:'Draft';index" json:"status"`
	StatusReason      string           `gorm:"type:text" json:"status_reason"`
	CreatedBy         int              `gorm:"index" json:"created_by"`
	ValidatedBy       int              `json:"validated_by"`
	ValidatedAt       *time.Time       `json:"validated_at"`
	ExecutedAt        *time.Time       `json:"executed_at"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAllocation struct {
	Type              AllocationType  `json:"type" binding:"required"`
	CrouId            string          `json:"crou_id" binding:"required"`
	TargetTenantLevel TenantLevel     `json:"target_tenant_level"`
	Libelle           string          `json:"libelle" binding:"required"`
	FiscalYear        string          `json:"fiscal_year"`
	Amount            decimal.Decimal `json:"amount"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// Distribution is one child slice of a cascade request.
type Distribution struct {
	TargetTenantId    string          `json:"target_tenant_id" binding:"required"`
	TargetTenantLevel TenantLevel     `json:"target_tenant_level"`
	Amount            decimal.Decimal `json:"amount"`
	Quantity          decimal.Decimal `json:"quantity"`
	Libelle           string          `json:"libelle"`
}

// Magnitude is the amount for budget allocations, the quantity for stock ones.
func (a *Allocation) Magnitude() decimal.Decimal {
	if a.Type == AllocationTypeStock {
		return a.Quantity
	}
	return a.Amount
}

func (d Distribution) Magnitude(allocType AllocationType) decimal.Decimal {
	if allocType == AllocationTypeStock {
		return d.Quantity
	}
	return d.Amount
}

func (obj Allocation) GetId() int {
	return obj.ID
}

// implements Cursor
func (a Allocation) GetCursor() string {
	return a.CreatedAt.Format(time.RFC3339Nano)
}

// GetAllocationForUpdate loads one allocation under a SELECT ... FOR UPDATE
// row lock. Must be called inside a transaction; the lock serializes
// concurrent cascades against the same parent.
func GetAllocationForUpdate(tx *gorm.DB, id int) (*Allocation, error) {
	var alloc Allocation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&alloc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &alloc, nil
}

// SumDistributedChildren returns the combined magnitude of a parent's direct
// children, excluding Cancelled and Rejected rows (their share returns to the
// parent's available figure). Children live under the tenants they were
// distributed to, so the sum runs with tenant scoping off; the caller has
// already checked access to the parent, and parent_id bounds the query.
func SumDistributedChildren(tx *gorm.DB, parent *Allocation) (decimal.Decimal, error) {
	column := "amount"
	if parent.Type == AllocationTypeStock {
		column = "quantity"
	}
	scopedCtx := utils.SetSkipTenantScopeInContext(tx.Statement.Context, true)
	var total decimal.NullDecimal
	err := tx.WithContext(scopedCtx).Model(&Allocation{}).
		Select("SUM("+column+")").
		Where("parent_id = ?", parent.ID).
		Where("status NOT IN ?", []AllocationStatus{AllocationStatusCancelled, AllocationStatusRejected}).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// AvailableAmount is the parent's magnitude minus what is already distributed.
func AvailableAmount(tx *gorm.DB, parent *Allocation) (decimal.Decimal, error) {
	distributed, err := SumDistributedChildren(tx, parent)
	if err != nil {
		return decimal.Zero, err
	}
	return parent.Magnitude().Sub(distributed), nil
}

func GetAllocation(ctx context.Context, id int) (*Allocation, error) {
	db := config.GetDB()
	var alloc Allocation
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&alloc).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &alloc, nil
}

type AllocationsEdge Edge[Allocation]

type AllocationsConnection struct {
	PageInfo *PageInfo          `json:"pageInfo"`
	Edges    []*AllocationsEdge `json:"edges"`
}

// PaginateAllocation lists allocations newest-first with optional filters.
// Tenant scoping comes from the tenant guard plugin via ctx.
func PaginateAllocation(ctx context.Context, limit *int, after *string, allocType *AllocationType, status *AllocationStatus, parentId *int, fiscalYear *string) (*AllocationsConnection, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Allocation{})

	if allocType != nil {
		dbCtx.Where("type = ?", *allocType)
	}
	if status != nil {
		dbCtx.Where("status = ?", *status)
	}
	if parentId != nil {
		dbCtx.Where("parent_id = ?", *parentId)
	}
	if fiscalYear != nil && *fiscalYear != "" {
		dbCtx.Where("fiscal_year = ?", *fiscalYear)
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}

	edges, pageInfo, err := FetchPagePureCursor[Allocation](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}

	connection := AllocationsConnection{PageInfo: pageInfo}
	for i := range edges {
		edge := AllocationsEdge(edges[i])
		connection.Edges = append(connection.Edges, &edge)
	}
	return &connection, nil
}

// ListChildren returns a parent's direct children, oldest first.
func ListChildren(ctx context.Context, parentId int) ([]*Allocation, error) {
	db := config.GetDB()
	var children []*Allocation
	err := db.WithContext(ctx).
		Where("parent_id = ?", parentId).
		Order("id").
		Find(&children).Error
	if err != nil {
		return nil, err
	}
	return children, nil
}
