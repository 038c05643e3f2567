package api

import (
	"errors"
	"net/http"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// writeError maps an application error onto a JSON response. input is echoed
// back on validation and conflict errors so a form can be re-populated.
func writeError(c *gin.Context, log zerolog.Logger, err error, input interface{}) {
	status, body := errorResponse(c, log, err, input)
	c.JSON(status, body)
}

func errorResponse(c *gin.Context, log zerolog.Logger, err error, input interface{}) (int, gin.H) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err, "Internal server error")
	}

	body := gin.H{"success": false}
	status := http.StatusInternalServerError

	switch appErr.Kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
		body["error"] = appErr.Message
		body["field"] = appErr.Field
		var details validation.Errors
		if errors.As(appErr, &details) {
			body["errors"] = details
		}
		if input != nil {
			body["input"] = input
		}
	case apperrors.KindAuthentication:
		status = http.StatusUnauthorized
		body["error"] = appErr.Message
		body["redirect"] = access.LoginPath
	case apperrors.KindForbidden:
		status = http.StatusForbidden
		body["error"] = "You do not have permission to access this page"
		body["redirect"] = access.DefaultPath(currentAccount(c))
	case apperrors.KindNotFound:
		status = http.StatusNotFound
		body["error"] = "not found"
	case apperrors.KindConflict:
		status = http.StatusConflict
		body["error"] = appErr.Message
		body["field"] = appErr.Field
		if input != nil {
			body["input"] = input
		}
	default:
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		body["error"] = "Internal server error"
	}

	return status, body
}

// bindError reports an unparsable request body
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request body: " + err.Error(),
	})
}
