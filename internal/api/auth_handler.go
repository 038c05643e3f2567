package api

import (
	"net/http"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login, registration and profile endpoints
type AuthHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	meta := service.ClientMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	result, err := h.services.Auth.Login(c.Request.Context(), &req, meta)
	if err != nil {
		writeError(c, h.log, err, gin.H{"username": req.Username})
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"redirect": result.Redirect,
		"role":     result.Account.Role,
		"token":    result.Token,
	})
}

// Register handles POST /register. New accounts are always viewers.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.services.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.log, err, registrationInput(&req))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"account":  account,
		"redirect": "/login",
	})
}

func registrationInput(req *models.RegisterRequest) gin.H {
	return gin.H{
		"username":     req.Username,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"organization": req.Organization,
		"phone":        req.Phone,
	}
}

// ForgotPassword handles POST /forgot-password. The response never reveals
// whether the address is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.services.Auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.log, err, gin.H{"email": req.Email})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If an account exists for that address, password reset instructions have been sent",
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(tokenKey)
	if err := h.services.Auth.Logout(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("Failed to revoke session")
	}

	h.setSessionCookie(c, "", time.Time{})
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/login"})
}

// Profile handles GET /profile
func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"account": currentAccount(c)})
}

// UpdateProfile handles POST /profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBind(&update); err != nil {
		bindError(c, err)
		return
	}

	account, err := h.services.Auth.UpdateProfile(c.Request.Context(), currentAccount(c), &update)
	if err != nil {
		writeError(c, h.log, err, update)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "account": account})
}

// ChangePassword handles POST /profile/password. Every session of the
// account, including this one, ends on success.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		NewPassword     string `json:"new_password" form:"new_password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.services.Auth.ChangePassword(c.Request.Context(), currentAccount(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	h.setSessionCookie(c, "", time.Time{})
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/login"})
}

// setSessionCookie writes the session cookie. A zero expiry clears it.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := -1
	if !expires.IsZero() {
		maxAge = int(time.Until(expires).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, maxAge, "/", "", h.cfg.Auth.CookieSecure, true)
}
