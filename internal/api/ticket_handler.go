package api

import (
	"net/http"

	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TicketHandler handles support ticket endpoints
type TicketHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(services *service.Services, log zerolog.Logger) *TicketHandler {
	return &TicketHandler{
		services: services,
		log:      log.With().Str("handler", "ticket").Logger(),
	}
}

// List handles GET /support
func (h *TicketHandler) List(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Ticket.List(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets":       listing.Tickets,
		"status_counts": listing.StatusCounts,
		"filters":       params,
	})
}

// Get handles GET /support/:id
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.services.Ticket.Get(c.Request.Context(), currentAccount(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Create handles POST /support
func (h *TicketHandler) Create(c *gin.Context) {
	var req models.TicketRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.services.Ticket.Create(c.Request.Context(), currentAccount(c), &req)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "ticket": ticket})
}

// UpdateStatus handles POST /support/:id/status
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.services.Ticket.UpdateStatus(c.Request.Context(), currentAccount(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": ticket})
}

// Assign handles POST /support/:id/assign
func (h *TicketHandler) Assign(c *gin.Context) {
	var req struct {
		AssignedTo string `json:"assigned_to" form:"assigned_to"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.services.Ticket.Assign(c.Request.Context(), currentAccount(c), c.Param("id"), req.AssignedTo)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": ticket})
}
