package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

type tenantCtxString string

const tenantContextKey = tenantCtxString("tenantContext")

// TenantMiddleware resolves the TenantContext from the verified claims and
// threads it, plus the scoping keys the tenant guard plugin reads, through
// the request context. Must run after AuthMiddleware.
func TenantMiddleware(resolver *tenancy.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CtxClaims(c.Request.Context())
		if claims == nil {
			c.Next()
			return
		}

		identity := &tenancy.Identity{
			UserId: claims.ID,
			Role:   claims.Role,
			CrouId: claims.CrouId,
		}
		tc, err := resolver.Resolve(c.Request.Context(), identity)
		if err != nil {
			status := http.StatusForbidden
			if errors.Is(err, utils.ErrUnauthenticated) {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{
				"success": false,
				"error":   gin.H{"code": "TENANT_CONTEXT", "message": err.Error()},
			})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), tenantContextKey, tc)
		ctx = utils.SetUserIdInContext(ctx, tc.UserId)
		ctx = utils.SetUserRoleInContext(ctx, tc.UserRole)
		ctx = utils.SetCrouIdInContext(ctx, tc.TenantId)
		if tc.AccessScope == models.AccessScopeMinistere {
			ctx = utils.SetIsMinistereInContext(ctx, true)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CtxTenant returns the resolved tenant context for the request, or nil.
func CtxTenant(ctx context.Context) *tenancy.TenantContext {
	raw, _ := ctx.Value(tenantContextKey).(*tenancy.TenantContext)
	return raw
}

// CorrelationMiddleware assigns each request a correlation id, honoring an
// incoming X-Correlation-Id header.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
