package api

import (
	"net/http"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ModelHandler handles ML model registry endpoints
type ModelHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewModelHandler creates a new ModelHandler
func NewModelHandler(services *service.Services, log zerolog.Logger) *ModelHandler {
	return &ModelHandler{
		services: services,
		log:      log.With().Str("handler", "model").Logger(),
	}
}

// activeRequest toggles a record on or off
type activeRequest struct {
	IsActive *bool `json:"is_active" form:"is_active"`
}

func bindActive(c *gin.Context) (bool, bool) {
	var req activeRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return false, false
	}
	if req.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "is_active is required", "field": "is_active"})
		return false, false
	}
	return *req.IsActive, true
}

// List handles GET /models
func (h *ModelHandler) List(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Model.List(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Register handles POST /models
func (h *ModelHandler) Register(c *gin.Context) {
	var req models.MLModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	model, err := h.services.Model.Register(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "model": model})
}

// SetActive handles POST /models/:id/active
func (h *ModelHandler) SetActive(c *gin.Context) {
	active, ok := bindActive(c)
	if !ok {
		return
	}

	model, err := h.services.Model.SetActive(c.Request.Context(), currentAccount(c), c.Param("id"), active)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "model": model})
}
