package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CascadeInput is the payload of POST /api/allocations/cascade.
type CascadeInput struct {
	ParentAllocationId int                   `json:"parent_allocation_id" binding:"required"`
	Distributions      []models.Distribution `json:"distributions" binding:"required,min=1,dive"`
	ValidateParent     bool                  `json:"validate_parent"`
}

// Engine walks allocations through their lifecycle. All mutations run inside
// a transaction holding a FOR UPDATE lock on the allocation row, so two
// cascades racing on the same parent serialize instead of jointly overrunning.
type Engine struct {
	filterOpts tenancy.FilterOptions
}

func NewEngine() *Engine {
	return &Engine{
		filterOpts: tenancy.FilterOptions{
			BypassForExtendedAccess: true,
			Resource:                "allocations",
		},
	}
}

// CreateCascadingAllocation splits a parent allocation across child tenants.
// All-or-nothing: the overrun check and every child insert commit together
// or not at all.
func (e *Engine) CreateCascadingAllocation(ctx context.Context, tc *tenancy.TenantContext, input *CascadeInput) ([]*models.Allocation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	var children []*models.Allocation

	// Best-effort redis lock; the row lock below is what guarantees safety.
	if lock, err := utils.TenantLock(ctx, tc.TenantId, "cascade", "allocationWorkflow.go", "CreateCascadingAllocation"); err == nil && lock != nil {
		defer func() { _ = lock.Release(ctx) }()
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent, err := models.GetAllocationForUpdate(tx, input.ParentAllocationId)
		if err != nil {
			return err
		}

		if err := tenancy.RequireAccess(ctx, tc, parent.CrouId, e.filterOpts); err != nil {
			return err
		}
		if parent.Status.IsTerminal() {
			return utils.ErrInvalidTransition
		}

		available, err := models.AvailableAmount(tx, parent)
		if err != nil {
			return err
		}

		requested := decimal.Zero
		for _, d := range input.Distributions {
			magnitude := d.Magnitude(parent.Type)
			if magnitude.LessThanOrEqual(decimal.Zero) {
				return utils.Validation(fmt.Sprintf("distribution for tenant %s has a non-positive amount", d.TargetTenantId))
			}
			requested = requested.Add(magnitude)
		}
		if requested.GreaterThan(available) {
			return utils.ErrAllocationOverrun
		}

		// each target tenant must exist and be reachable from this context
		for _, d := range input.Distributions {
			if _, err := models.GetCrou(ctx, d.TargetTenantId); err != nil {
				return fmt.Errorf("target tenant %s: %w", d.TargetTenantId, utils.ErrorRecordNotFound)
			}
			crossOpts := e.filterOpts
			crossOpts.AllowCrossTenant = true
			if err := tenancy.RequireAccess(ctx, tc, d.TargetTenantId, crossOpts); err != nil {
				return err
			}
		}

		for _, d := range input.Distributions {
			level := d.TargetTenantLevel
			if level == "" {
				level = models.TenantLevelRegional
			}
			child := &models.Allocation{
				Type:              parent.Type,
				ParentId:          &parent.ID,
				CrouId:            d.TargetTenantId,
				TargetTenantLevel: level,
				Libelle:           d.Libelle,
				FiscalYear:        parent.FiscalYear,
				Status:            models.AllocationStatusDraft,
				CreatedBy:         tc.UserId,
			}
			if parent.Type == models.AllocationTypeStock {
				child.Quantity = d.Quantity
			} else {
				child.Amount = d.Amount
			}
			if err := tx.Create(child).Error; err != nil {
				return err
			}
			children = append(children, child)
		}

		if input.ValidateParent {
			// a cascade may only submit a draft parent; approval and
			// execution go through ValidateAllocation / ExecuteAllocation,
			// which enforce the role ceilings
			if parent.Status != models.AllocationStatusDraft {
				return utils.ErrInvalidTransition
			}
			parent.Status = models.AllocationStatusSubmitted
			if err := tx.Save(parent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		config.LogError(logger, "allocationWorkflow.go", "CreateCascadingAllocation", "cascade transaction", input.ParentAllocationId, err)
		models.RecordAudit(ctx, models.AuditActionCreate, "allocations", fmt.Sprint(input.ParentAllocationId), nil, input, false, err.Error())
		return nil, err
	}

	models.RecordAudit(ctx, models.AuditActionCreate, "allocations", fmt.Sprint(input.ParentAllocationId), nil, children, true, "")
	e.notifyTargets(ctx, children)
	return children, nil
}

// ValidateAllocation approves or rejects a submitted allocation.
func (e *Engine) ValidateAllocation(ctx context.Context, tc *tenancy.TenantContext, id int, action models.ValidationAction, reason string) (*models.Allocation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	var alloc *models.Allocation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = models.GetAllocationForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := tenancy.RequireAccess(ctx, tc, alloc.CrouId, e.filterOpts); err != nil {
			return err
		}

		if alloc.Status != models.AllocationStatusSubmitted && alloc.Status != models.AllocationStatusPending {
			return utils.ErrInvalidTransition
		}

		switch action {
		case models.ValidationActionApprove:
			if err := CheckApprovalLimit(models.UserRole(tc.UserRole), alloc.Magnitude()); err != nil {
				return err
			}
			alloc.Status = models.AllocationStatusApproved
		case models.ValidationActionReject:
			if reason == "" {
				return utils.Validation("rejection requires a reason")
			}
			alloc.Status = models.AllocationStatusRejected
			alloc.StatusReason = reason
		default:
			return utils.Validation(fmt.Sprintf("unknown validation action %q", action))
		}

		now := time.Now()
		alloc.ValidatedBy = tc.UserId
		alloc.ValidatedAt = &now
		return tx.Save(alloc).Error
	})
	if err != nil {
		config.LogError(logger, "allocationWorkflow.go", "ValidateAllocation", string(action), id, err)
		models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, nil, false, err.Error())
		return nil, err
	}

	models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, alloc, true, string(action))
	e.notifyTargets(ctx, []*models.Allocation{alloc})
	return alloc, nil
}

// ExecuteAllocation consumes an approved allocation against the budget ledger.
func (e *Engine) ExecuteAllocation(ctx context.Context, tc *tenancy.TenantContext, id int) (*models.Allocation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	var alloc *models.Allocation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = models.GetAllocationForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := tenancy.RequireAccess(ctx, tc, alloc.CrouId, e.filterOpts); err != nil {
			return err
		}
		if alloc.Status != models.AllocationStatusApproved {
			return utils.ErrInvalidTransition
		}

		now := time.Now()
		alloc.Status = models.AllocationStatusExecuted
		alloc.ExecutedAt = &now
		return tx.Save(alloc).Error
	})
	if err != nil {
		config.LogError(logger, "allocationWorkflow.go", "ExecuteAllocation", "execute transaction", id, err)
		models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, nil, false, err.Error())
		return nil, err
	}

	models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, alloc, true, "executed")
	return alloc, nil
}

// CancelAllocation voids any non-terminal allocation. Cancelling twice is an
// InvalidTransition, not a second cancellation record.
func (e *Engine) CancelAllocation(ctx context.Context, tc *tenancy.TenantContext, id int, reason string) (*models.Allocation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if reason == "" {
		return nil, utils.Validation("cancellation requires a reason")
	}

	var alloc *models.Allocation
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = models.GetAllocationForUpdate(tx, id)
		if err != nil {
			return err
		}
		if err := tenancy.RequireAccess(ctx, tc, alloc.CrouId, e.filterOpts); err != nil {
			return err
		}
		if alloc.Status.IsTerminal() {
			return utils.ErrInvalidTransition
		}

		alloc.Status = models.AllocationStatusCancelled
		alloc.StatusReason = reason
		return tx.Save(alloc).Error
	})
	if err != nil {
		config.LogError(logger, "allocationWorkflow.go", "CancelAllocation", "cancel transaction", id, err)
		models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, nil, false, err.Error())
		return nil, err
	}

	models.RecordAudit(ctx, models.AuditActionUpdate, "allocations", fmt.Sprint(id), nil, alloc, true, "cancelled: "+reason)
	return alloc, nil
}

// CreateRootAllocation starts a new cascade. Ministry only; regional centers
// receive their share through cascades.
func (e *Engine) CreateRootAllocation(ctx context.Context, tc *tenancy.TenantContext, input *models.NewAllocation) (*models.Allocation, error) {
	if tc.TenantType != models.TenantTypeMinistere {
		return nil, utils.Denied("only ministry tenants may create root allocations")
	}
	magnitude := input.Amount
	if input.Type == models.AllocationTypeStock {
		magnitude = input.Quantity
	}
	if magnitude.LessThanOrEqual(decimal.Zero) {
		return nil, utils.Validation("allocation amount must be positive")
	}
	if _, err := models.GetCrou(ctx, input.CrouId); err != nil {
		return nil, fmt.Errorf("target tenant %s: %w", input.CrouId, utils.ErrorRecordNotFound)
	}

	level := input.TargetTenantLevel
	if level == "" {
		level = models.TenantLevelNational
	}
	alloc := &models.Allocation{
		Type:              input.Type,
		CrouId:            input.CrouId,
		TargetTenantLevel: level,
		Libelle:           input.Libelle,
		FiscalYear:        input.FiscalYear,
		Amount:            input.Amount,
		Quantity:          input.Quantity,
		Status:            models.AllocationStatusDraft,
		CreatedBy:         tc.UserId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(alloc).Error; err != nil {
		return nil, err
	}

	models.RecordAudit(ctx, models.AuditActionCreate, "allocations", fmt.Sprint(alloc.ID), nil, alloc, true, "")
	return alloc, nil
}

// notifyTargets tells the target tenants' directors about cascade events.
// Best effort; allocation state is already committed.
func (e *Engine) notifyTargets(ctx context.Context, allocations []*models.Allocation) {
	logger := config.GetLogger()
	db := config.GetDB()
	for _, alloc := range allocations {
		var users []*models.User
		scopedCtx := utils.SetSkipTenantScopeInContext(ctx, true)
		err := db.WithContext(scopedCtx).
			Where("crou_id = ? AND role IN ? AND is_active = ?", alloc.CrouId,
				[]models.UserRole{models.UserRoleDirecteur, models.UserRoleChefFinancier}, true).
			Find(&users).Error
		if err != nil {
			config.LogError(logger, "allocationWorkflow.go", "notifyTargets", "lookup target users", alloc.CrouId, err)
			continue
		}
		for _, user := range users {
			title := fmt.Sprintf("Allocation %s: %s", alloc.Status, alloc.Libelle)
			notification, err := models.CreateNotification(scopedCtx, user.ID, models.NotificationTypeAllocation, title, alloc.StatusReason, fmt.Sprint(alloc.ID))
			if err != nil {
				config.LogError(logger, "allocationWorkflow.go", "notifyTargets", "create notification", user.ID, err)
				continue
			}
			// fan out to connected gateways on other instances
			_ = config.PublishRedis("notifications", notification)
		}
	}
}
