package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/workflow"
)

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", "invalid id"))
		return 0, false
	}
	return id, true
}

func listAllocationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}

		var allocType *models.AllocationType
		if v := c.Query("type"); v != "" {
			t := models.AllocationType(v)
			allocType = &t
		}
		var status *models.AllocationStatus
		if v := c.Query("status"); v != "" {
			s := models.AllocationStatus(v)
			status = &s
		}
		var parentId *int
		if v := c.Query("parent_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				parentId = &n
			}
		}
		var fiscalYear *string
		if v := c.Query("fiscal_year"); v != "" {
			fiscalYear = &v
		}
		var limit *int
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = &n
			}
		}
		var after *string
		if v := c.Query("after"); v != "" {
			after = &v
		}

		connection, err := models.PaginateAllocation(c.Request.Context(), limit, after, allocType, status, parentId, fiscalYear)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "allocations": connection})
	}
}

func getAllocationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}

		alloc, err := models.GetAllocation(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := tenancy.RequireAccess(c.Request.Context(), tc, alloc.CrouId, tenancy.FilterOptions{
			BypassForExtendedAccess: true,
			Resource:                "allocations",
		}); err != nil {
			respondError(c, err)
			return
		}

		children, err := models.ListChildren(c.Request.Context(), alloc.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "allocation": alloc, "children": children})
	}
}

func createRootAllocationHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireMinistere(c)
		if tc == nil {
			return
		}
		var input models.NewAllocation
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		alloc, err := engine.CreateRootAllocation(c.Request.Context(), tc, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "allocation": alloc})
	}
}

func cascadeAllocationHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		var input workflow.CascadeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		children, err := engine.CreateCascadingAllocation(c.Request.Context(), tc, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "allocations": children})
	}
}

type validateRequest struct {
	Action models.ValidationAction `json:"action" binding:"required"`
	Reason string                  `json:"reason"`
}

func validateAllocationHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var req validateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}

		alloc, err := engine.ValidateAllocation(c.Request.Context(), tc, id, req.Action, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "allocation": alloc})
	}
}

func executeAllocationHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		alloc, err := engine.ExecuteAllocation(c.Request.Context(), tc, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "allocation": alloc})
	}
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func cancelAllocationHandler(engine *workflow.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		var req cancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		alloc, err := engine.CancelAllocation(c.Request.Context(), tc, id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "allocation": alloc})
	}
}

func listTenantsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		crous, err := models.ListActiveCrous(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		// non-ministry callers only see tenants in their accessible set
		if tc.TenantType != models.TenantTypeMinistere {
			filtered := crous[:0]
			for _, crou := range crous {
				if tc.CanAccessTenant(crou.ID.String()) {
					filtered = append(filtered, crou)
				}
			}
			crous = filtered
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "tenants": crous})
	}
}

func createTenantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireMinistere(c)
		if tc == nil {
			return
		}
		var input models.NewCrou
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		crou, err := models.CreateCrou(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		models.RecordAudit(c.Request.Context(), models.AuditActionCreate, "crous", crou.ID.String(), nil, crou, true, "")
		c.JSON(http.StatusCreated, gin.H{"success": true, "tenant": crou})
	}
}

func updateTenantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireMinistere(c)
		if tc == nil {
			return
		}
		var input models.NewCrou
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
			return
		}
		before, err := models.GetCrou(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		crou, err := models.UpdateCrou(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		models.RecordAudit(c.Request.Context(), models.AuditActionUpdate, "crous", crou.ID.String(), before, crou, true, "")
		c.JSON(http.StatusOK, gin.H{"success": true, "tenant": crou})
	}
}
