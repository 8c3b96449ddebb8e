package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/middlewares"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/notifier"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/roufai-ne/crou-management-system-sub011/workflow"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("crou-management")

// errorEnvelope maps domain errors onto the API's error contract.
func errorEnvelope(code string, message string) gin.H {
	return gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHENTICATED", err.Error()))
	case errors.Is(err, utils.ErrTenantContextMissing):
		c.JSON(http.StatusForbidden, errorEnvelope("TENANT_CONTEXT_MISSING", err.Error()))
	case utils.IsDenied(err):
		c.JSON(http.StatusForbidden, errorEnvelope("DENIED", err.Error()))
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("NOT_FOUND", err.Error()))
	case errors.Is(err, utils.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorEnvelope("INVALID_TRANSITION", err.Error()))
	case errors.Is(err, utils.ErrAllocationOverrun):
		c.JSON(http.StatusBadRequest, errorEnvelope("ALLOCATION_OVERRUN", err.Error()))
	case errors.Is(err, utils.ErrApprovalLimitExceeded):
		c.JSON(http.StatusBadRequest, errorEnvelope("APPROVAL_LIMIT_EXCEEDED", err.Error()))
	case utils.IsValidation(err):
		c.JSON(http.StatusBadRequest, errorEnvelope("VALIDATION", err.Error()))
	default:
		// don't leak internals
		config.LogError(config.GetLogger(), "server.go", "respondError", "unhandled error", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorEnvelope("INTERNAL", "internal server error"))
	}
}

// requireTenant fetches the resolved tenant context or aborts with 401.
func requireTenant(c *gin.Context) *tenancy.TenantContext {
	tc := middlewares.CtxTenant(c.Request.Context())
	if tc == nil {
		c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHENTICATED", "authentication required"))
		c.Abort()
		return nil
	}
	return tc
}

func requireMinistere(c *gin.Context) *tenancy.TenantContext {
	tc := requireTenant(c)
	if tc == nil {
		return nil
	}
	if tc.TenantType != models.TenantTypeMinistere {
		c.JSON(http.StatusForbidden, errorEnvelope("DENIED", "ministry access required"))
		c.Abort()
		return nil
	}
	return tc
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	resolver := tenancy.NewResolver()
	engine := workflow.NewEngine()
	hub := notifier.NewHub()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.TenantMiddleware(resolver))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/auth/login", loginHandler())
	r.GET("/auth/me", meHandler())

	api := r.Group("/api")
	{
		api.GET("/tenants", listTenantsHandler())
		api.POST("/tenants", createTenantHandler())
		api.PATCH("/tenants/:id", updateTenantHandler())
		api.POST("/users", createUserHandler())

		api.GET("/allocations", listAllocationsHandler())
		api.GET("/allocations/:id", getAllocationHandler())
		api.POST("/allocations", createRootAllocationHandler(engine))
		api.POST("/allocations/cascade", cascadeAllocationHandler(engine))
		api.PATCH("/allocations/:id/validate", validateAllocationHandler(engine))
		api.POST("/allocations/:id/execute", executeAllocationHandler(engine))
		api.POST("/allocations/:id/cancel", cancelAllocationHandler(engine))

		api.GET("/residences", listResidencesHandler())
		api.POST("/residences", createResidenceHandler())
		api.POST("/rooms", createRoomHandler())
		api.GET("/housing-assignments", listHousingAssignmentsHandler())
		api.POST("/housing-assignments", createHousingAssignmentHandler())
		api.POST("/housing-assignments/:id/end", endHousingAssignmentHandler())

		api.GET("/reports/allocations/excel", allocationReportExcelHandler())
		api.GET("/reports/allocations/pdf", allocationReportPdfHandler())
		api.GET("/reports/occupancy/excel", occupancyReportExcelHandler())
		api.GET("/reports/occupancy/pdf", occupancyReportPdfHandler())

		api.GET("/notifications", listNotificationsHandler())
		api.POST("/notifications/:id/read", markNotificationReadHandler())
	}

	r.GET("/ws/notifications", notificationSocketHandler(hub))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start listening first; DB/redis come up behind the running server so
	// container platforms see a healthy port quickly.
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()
	models.StartAuditWriter()
	go hub.RunRedisBridge()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	models.StopAuditWriter()
	log.Println("server exited")
}
