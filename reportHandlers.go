package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/models/reports"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
)

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportTenantScope decides which tenant a report covers. Ministry users may
// pass ?crou_id= to target one tenant or leave it empty for network-wide;
// everyone else is pinned to their own tenant.
func reportTenantScope(c *gin.Context, tc *tenancy.TenantContext) (string, bool) {
	requested := c.Query("crou_id")
	if tc.TenantType == models.TenantTypeMinistere {
		return requested, true
	}
	if requested != "" && requested != tc.TenantId {
		if err := tenancy.RequireAccess(c.Request.Context(), tc, requested, tenancy.FilterOptions{
			Resource: "reports",
		}); err != nil {
			respondError(c, err)
			return "", false
		}
	}
	return tc.TenantId, true
}

func allocationSummaryData(c *gin.Context) ([]*reports.AllocationSummaryResponse, bool) {
	tc := requireTenant(c)
	if tc == nil {
		return nil, false
	}
	crouId, ok := reportTenantScope(c, tc)
	if !ok {
		return nil, false
	}
	data, err := reports.GetAllocationSummaryReport(c.Request.Context(), crouId, c.Query("fiscal_year"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return data, true
}

func allocationReportExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := allocationSummaryData(c)
		if !ok {
			return
		}
		payload, err := reports.ExportAllocationSummaryExcel(data)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("allocations-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, excelContentType, payload)
	}
}

func allocationReportPdfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := allocationSummaryData(c)
		if !ok {
			return
		}
		payload, err := reports.ExportAllocationSummaryPdf("Allocations budgetaires", data)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("allocations-%s.pdf", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "application/pdf", payload)
	}
}

func occupancyData(c *gin.Context) ([]*models.OccupancySummaryRow, bool) {
	tc := requireTenant(c)
	if tc == nil {
		return nil, false
	}
	crouId, ok := reportTenantScope(c, tc)
	if !ok {
		return nil, false
	}
	data, err := models.GetOccupancySummary(c.Request.Context(), crouId)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return data, true
}

func occupancyReportExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := occupancyData(c)
		if !ok {
			return
		}
		payload, err := reports.ExportOccupancyExcel(data)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("occupancy-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, excelContentType, payload)
	}
}

func occupancyReportPdfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := occupancyData(c)
		if !ok {
			return
		}
		payload, err := reports.ExportOccupancyPdf("Occupation des residences", data)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("occupancy-%s.pdf", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "application/pdf", payload)
	}
}
