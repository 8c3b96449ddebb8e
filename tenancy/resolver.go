// Package tenancy implements tenant context resolution, request isolation and
// cross-tenant access checks. Policies are plain values passed at each call
// site; nothing here is discovered through reflection or route metadata.
package tenancy

import (
	"context"

	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

// Identity is the verified output of the authentication layer. Token checking
// itself happens upstream; by the time an Identity exists it is trusted.
type Identity struct {
	UserId   int
	Username string
	Role     string
	CrouId   string
}

// TenantContext is created once per authenticated request and treated as
// immutable afterwards.
type TenantContext struct {
	TenantId            string
	TenantType          models.TenantType
	AccessibleTenantIds map[string]bool
	AccessScope         models.AccessScope
	UserId              int
	UserRole            string
}

func (tc *TenantContext) CanAccessTenant(tenantId string) bool {
	return tc.AccessibleTenantIds[tenantId]
}

// Resolver builds TenantContexts from identities. It is constructed once in
// main and injected where needed; there is no package-level instance.
type Resolver struct{}

func NewResolver() *Resolver { return &Resolver{} }

// Resolve derives the tenant context for an identity. A ministry role gets
// ministere scope over every active tenant; everyone else is confined to
// their own CROU. An identity with no tenant mapping is a hard failure
// (callers map it to 403, never retry).
func (r *Resolver) Resolve(ctx context.Context, identity *Identity) (*TenantContext, error) {
	if identity == nil || identity.UserId == 0 {
		return nil, utils.ErrUnauthenticated
	}

	role := models.UserRole(identity.Role)

	if models.MinistryRoles[role] {
		ids, err := models.ActiveCrouIds(ctx)
		if err != nil {
			return nil, err
		}
		accessible := make(map[string]bool, len(ids)+1)
		for _, id := range ids {
			accessible[id] = true
		}
		if identity.CrouId != "" {
			accessible[identity.CrouId] = true
		}
		return &TenantContext{
			TenantId:            identity.CrouId,
			TenantType:          models.TenantTypeMinistere,
			AccessibleTenantIds: accessible,
			AccessScope:         models.AccessScopeMinistere,
			UserId:              identity.UserId,
			UserRole:            identity.Role,
		}, nil
	}

	if identity.CrouId == "" {
		return nil, utils.ErrTenantContextMissing
	}

	return &TenantContext{
		TenantId:            identity.CrouId,
		TenantType:          models.TenantTypeCrou,
		AccessibleTenantIds: map[string]bool{identity.CrouId: true},
		AccessScope:         models.AccessScopeSingle,
		UserId:              identity.UserId,
		UserRole:            identity.Role,
	}, nil
}
