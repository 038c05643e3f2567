package api

import (
	"errors"
	"net/http"

	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler handles account administration endpoints
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	listing, err := h.services.Admin.ListAccounts(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": listing.Accounts,
		"stats":    listing.Stats,
		"filters":  params,
	})
}

// GetUser handles GET /admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	account, err := h.services.Admin.GetAccount(c.Request.Context(), currentAccount(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}
	c.JSON(http.StatusOK, account)
}

// Promote handles POST /admin/users/promote
func (h *AdminHandler) Promote(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId" form:"userId"`
		NewRole string `json:"newRole" form:"newRole"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	change, err := h.services.Admin.ChangeRole(c.Request.Context(), currentAccount(c), req.UserID, req.NewRole)
	if err != nil {
		status, body := errorResponse(c, h.log, err, req)
		var rejected *service.RoleChangeError
		if errors.As(err, &rejected) {
			body["oldRole"] = rejected.OldRole
			body["newRole"] = rejected.NewRole
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User " + change.Account.Username + " role changed from " +
			change.OldRole.DisplayName() + " to " + change.NewRole.DisplayName(),
		"oldRole": change.OldRole,
		"newRole": change.NewRole,
	})
}

// ToggleStatus handles POST /admin/users/toggle-status
func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" form:"userId"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.services.Admin.ToggleStatus(c.Request.Context(), currentAccount(c), req.UserID)
	if err != nil {
		writeError(c, h.log, err, req)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"isActive": account.IsActive,
	})
}

// Audit handles GET /admin/audit
func (h *AdminHandler) Audit(c *gin.Context) {
	params := query.FromValues(c.Request.URL.Query())

	page, err := h.services.Admin.ListAudit(c.Request.Context(), currentAccount(c), params)
	if err != nil {
		writeError(c, h.log, err, params)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": page, "filters": params})
}
