package api

import (
	"net/http"
	"strconv"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DataHandler handles data source and climate reading endpoints
type DataHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(services *service.Services, log zerolog.Logger) *DataHandler {
	return &DataHandler{
		services: services,
		log:      log.With().Str("handler", "data").Logger(),
	}
}

// Home handles GET /
func (h *DataHandler) Home(c *gin.Context) {
	stats, err := h.services.Climate.HomeStats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListSources handles GET /data/sources
func (h *DataHandler) ListSources(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Climate.ListSources(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources":      listing.Sources,
		"stats":        listing.Stats,
		"source_types": listing.SourceTypes,
		"filters":      params,
	})
}

// CreateSource handles POST /data/sources
func (h *DataHandler) CreateSource(c *gin.Context) {
	var req models.DataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	source, err := h.services.Climate.CreateSource(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "source": source})
}

// SetSourceActive handles POST /data/sources/:id/active
func (h *DataHandler) SetSourceActive(c *gin.Context) {
	active, ok := bindActive(c)
	if !ok {
		return
	}

	source, err := h.services.Climate.SetSourceActive(c.Request.Context(), currentAccount(c), c.Param("id"), active)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "source": source})
}

// DeleteSource handles DELETE /data/sources/:id
func (h *DataHandler) DeleteSource(c *gin.Context) {
	if err := h.services.Climate.DeleteSource(c.Request.Context(), currentAccount(c), c.Param("id")); err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListData handles GET /data/climate
func (h *DataHandler) ListData(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Climate.ListData(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       listing.Data,
		"summary":    listing.Summary,
		"data_types": listing.DataTypes,
		"filters":    params,
	})
}

// RecordDataPoint handles POST /data/climate
func (h *DataHandler) RecordDataPoint(c *gin.Context) {
	var req models.DataPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	point, err := h.services.Climate.RecordDataPoint(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data_point": point})
}

// MarkProcessed handles POST /data/climate/:id/processed
func (h *DataHandler) MarkProcessed(c *gin.Context) {
	point, err := h.services.Climate.MarkProcessed(c.Request.Context(), currentAccount(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data_point": point})
}

// Chart handles GET /api/climate-data-chart?dataType=X&days=N. data_type is
// accepted as an alias.
func (h *DataHandler) Chart(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(service.DefaultChartDays)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "days must be an integer", "field": "days"})
		return
	}

	dataType := c.Query("dataType")
	if dataType == "" {
		dataType = c.Query("data_type")
	}
	chart, err := h.services.Climate.Chart(c.Request.Context(), currentAccount(c), dataType, days)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, chart)
}
