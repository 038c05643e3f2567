package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys set by requireAuth
const (
	accountKey = "account"
	tokenKey   = "session_token"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if account := currentAccount(c); account != nil {
			event = event.Str("account_id", account.ID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latencies by route template
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireAuth resolves the session token from the session cookie or a
// bearer header and stores the account on the context
func requireAuth(services *service.Services, cfg *config.Config, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cfg.Auth.CookieName)

		account, err := services.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, log, err, nil)
			c.Abort()
			return
		}

		c.Set(accountKey, account)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// requireRole rejects accounts below min. The response never names the
// resource that was denied.
func requireRole(min models.Role, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.RequireCapability(currentAccount(c), min); err != nil {
			writeError(c, log, err, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil {
			return token
		}
	}
	return ""
}

func currentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(accountKey); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}
