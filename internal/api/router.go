package api

import (
	"context"
	"net/http"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ServiceName is reported by the health check
const ServiceName = "climate-dashboard-api"

const healthTimeout = 2 * time.Second

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router. db may be nil, in which
// case /health reports only the process.
func NewRouter(services *service.Services, cfg *config.Config, m *metrics.Metrics, db HealthChecker, log zerolog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware(m))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(services, cfg, log)
	dashboardHandler := NewDashboardHandler(services, log)
	alertHandler := NewAlertHandler(services, log)
	ticketHandler := NewTicketHandler(services, log)
	modelHandler := NewModelHandler(services, log)
	dataHandler := NewDataHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check and Prometheus scrape
	router.GET("/health", healthCheck(db, log))
	if m != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	// Public pages
	router.GET("/", dataHandler.Home)
	router.POST("/login", authHandler.Login)
	router.POST("/register", authHandler.Register)
	router.POST("/forgot-password", authHandler.ForgotPassword)

	authed := router.Group("/")
	authed.Use(requireAuth(services, cfg, log))
	{
		authed.POST("/logout", authHandler.Logout)
		authed.GET("/profile", authHandler.Profile)
		authed.POST("/profile", authHandler.UpdateProfile)
		authed.POST("/profile/password", authHandler.ChangePassword)

		// Dashboards
		authed.GET("/dashboard", dashboardHandler.Redirect)
		authed.GET("/dashboard/viewer", dashboardHandler.Viewer)
		authed.GET("/dashboard/analyst", requireRole(models.RoleAnalyst, log), dashboardHandler.Analyst)
		authed.GET("/dashboard/admin", requireRole(models.RoleAdministrator, log), dashboardHandler.Admin)

		// Alerts
		alerts := authed.Group("/alerts")
		{
			alerts.GET("", alertHandler.List)
			alerts.POST("", requireRole(models.RoleAnalyst, log), alertHandler.Raise)
			alerts.POST("/acknowledge/:alertId", requireRole(models.RoleAnalyst, log), alertHandler.Acknowledge)
			alerts.POST("/resolve/:alertId", requireRole(models.RoleAnalyst, log), alertHandler.Resolve)
		}

		// Support tickets
		support := authed.Group("/support")
		{
			support.GET("", ticketHandler.List)
			support.POST("", ticketHandler.Create)
			support.GET("/:id", ticketHandler.Get)
			support.POST("/:id/status", ticketHandler.UpdateStatus)
			support.POST("/:id/assign", requireRole(models.RoleAdministrator, log), ticketHandler.Assign)
		}

		// ML model registry
		mlModels := authed.Group("/models")
		{
			mlModels.GET("", modelHandler.List)
			mlModels.POST("", requireRole(models.RoleAnalyst, log), modelHandler.Register)
			mlModels.POST("/:id/active", requireRole(models.RoleAdministrator, log), modelHandler.SetActive)
		}

		// Data management
		data := authed.Group("/data", requireRole(models.RoleAnalyst, log))
		{
			data.GET("/sources", dataHandler.ListSources)
			data.POST("/sources", requireRole(models.RoleAdministrator, log), dataHandler.CreateSource)
			data.POST("/sources/:id/active", requireRole(models.RoleAdministrator, log), dataHandler.SetSourceActive)
			data.DELETE("/sources/:id", requireRole(models.RoleAdministrator, log), dataHandler.DeleteSource)
			data.GET("/climate", dataHandler.ListData)
			data.POST("/climate", dataHandler.RecordDataPoint)
			data.POST("/climate/:id/processed", dataHandler.MarkProcessed)
		}

		// Chart feeds
		authed.GET("/api/climate-data-chart", dataHandler.Chart)
		authed.GET("/api/system-metrics", requireRole(models.RoleAdministrator, log), dashboardHandler.SystemMetrics)

		// Administration
		admin := authed.Group("/admin", requireRole(models.RoleAdministrator, log))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.POST("/users/promote", adminHandler.Promote)
			admin.POST("/users/toggle-status", adminHandler.ToggleStatus)
			admin.GET("/audit", adminHandler.Audit)
		}
	}

	return router
}

// healthCheck returns the health status, 503 when the database is unreachable
func healthCheck(db HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, database, code := "healthy", "ok", http.StatusOK
		if db == nil {
			database = "not configured"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				log.Error().Err(err).Msg("Database health check failed")
				status, database, code = "unhealthy", "unreachable", http.StatusServiceUnavailable
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"database":  database,
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   ServiceName,
		})
	}
}
