package api

import (
	"net/http"
	"strconv"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DashboardHandler handles the role dashboards and the system metrics feed
type DashboardHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(services *service.Services, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		services: services,
		log:      log.With().Str("handler", "dashboard").Logger(),
	}
}

// Redirect handles GET /dashboard by sending the account to its role's dashboard
func (h *DashboardHandler) Redirect(c *gin.Context) {
	c.Redirect(http.StatusFound, access.DashboardPath(currentAccount(c).Role))
}

// Admin handles GET /dashboard/admin
func (h *DashboardHandler) Admin(c *gin.Context) {
	dash, err := h.services.Dashboard.Admin(c.Request.Context(), currentAccount(c))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Analyst handles GET /dashboard/analyst
func (h *DashboardHandler) Analyst(c *gin.Context) {
	dash, err := h.services.Dashboard.Analyst(c.Request.Context(), currentAccount(c))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Viewer handles GET /dashboard/viewer
func (h *DashboardHandler) Viewer(c *gin.Context) {
	dash, err := h.services.Dashboard.Viewer(c.Request.Context(), currentAccount(c))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// SystemMetrics handles GET /api/system-metrics?hours=N
func (h *DashboardHandler) SystemMetrics(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(service.DefaultSeriesHours)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "hours must be an integer", "field": "hours"})
		return
	}

	series, err := h.services.Metrics.Series(c.Request.Context(), currentAccount(c), hours)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, series)
}
