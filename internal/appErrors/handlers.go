package appErrors

import (
	"net/http"

	"collegium_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// HandleError writes an AppError as a JSON response. Unknown errors are
// wrapped and hidden behind a generic 500.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !As(err, &appErr) {
		appErr = ErrInternal.WithError(err)
	}

	if appErr.HTTPCode >= http.StatusInternalServerError {
		logger.WithError(err).Error("server error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}
