package api

import (
	"net/http"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AlertHandler handles alert endpoints
type AlertHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(services *service.Services, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		services: services,
		log:      log.With().Str("handler", "alert").Logger(),
	}
}

// List handles GET /alerts
func (h *AlertHandler) List(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Alert.List(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts":          listing.Alerts,
		"severity_counts": listing.SeverityCounts,
		"filters":         params,
	})
}

// Raise handles POST /alerts
func (h *AlertHandler) Raise(c *gin.Context) {
	var req models.AlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alert, err := h.services.Alert.Raise(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "alert": alert})
}

// Acknowledge handles POST /alerts/acknowledge/:alertId
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alert, err := h.services.Alert.Acknowledge(c.Request.Context(), currentAccount(c), c.Param("alertId"))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}

// Resolve handles POST /alerts/resolve/:alertId
func (h *AlertHandler) Resolve(c *gin.Context) {
	alert, err := h.services.Alert.Resolve(c.Request.Context(), currentAccount(c), c.Param("alertId"))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}
