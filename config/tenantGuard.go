package config

import (
	"context"
	"strings"

	"github.com/roufai-ne/crou-management-system-sub011/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantGuardPlugin enforces multi-tenant isolation by automatically scoping
// queries/updates/deletes to the request's crou_id when the model has a crou_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include crou_id manually.
// - Ministry/internal bypass is explicit via context flags.
type TenantGuardPlugin struct{}

func NewTenantGuardPlugin() *TenantGuardPlugin { return &TenantGuardPlugin{} }

func (p *TenantGuardPlugin) Name() string { return "tenant_guard" }

func (p *TenantGuardPlugin) Initialize(db *gorm.DB) error {
	// Query
	if err := db.Callback().Query().Before("gorm:query").Register("tenant_guard:query", tenantGuardCallback); err != nil {
		return err
	}
	// Row (First/Take)
	if err := db.Callback().Row().Before("gorm:row").Register("tenant_guard:row", tenantGuardCallback); err != nil {
		return err
	}
	// Update
	if err := db.Callback().Update().Before("gorm:update").Register("tenant_guard:update", tenantGuardCallback); err != nil {
		return err
	}
	// Delete
	if err := db.Callback().Delete().Before("gorm:delete").Register("tenant_guard:delete", tenantGuardCallback); err != nil {
		return err
	}
	return nil
}

func tenantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassTenantScope(ctx) {
		return
	}
	crouID := crouIdFromContext(ctx)
	if crouID == "" {
		return
	}

	// Only apply if the current model/table includes a crou_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasCrouID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "crou_id") {
			hasCrouID = true
			break
		}
	}
	if !hasCrouID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasCrouID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "crou_id"},
				Value:  crouID,
			},
		},
	})
}

func crouIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyCrouId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassTenantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipTenantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsMinistere).(bool); ok && v {
		return true
	}
	return false
}

func whereHasCrouID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasCrouID(e) {
			return true
		}
	}
	return false
}

func exprHasCrouID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsCrouID(v.Column)
	case clause.Neq:
		return colIsCrouID(v.Column)
	case clause.Gt:
		return colIsCrouID(v.Column)
	case clause.Gte:
		return colIsCrouID(v.Column)
	case clause.Lt:
		return colIsCrouID(v.Column)
	case clause.Lte:
		return colIsCrouID(v.Column)
	case clause.IN:
		return colIsCrouID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasCrouID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasCrouID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "crou_id")
	default:
		return false
	}
}

func colIsCrouID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "crou_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "crou_id")
	default:
		return false
	}
}
