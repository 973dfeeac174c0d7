package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
	"github.com/skillsenselab/shelfmark/internal/logger"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived automatically; otherwise a generic 500 is
// sent. Underlying causes are logged server-side and never serialized.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logFailure(c, appErr)
		}
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	wrapped := apperrors.Internal(err)
	logFailure(c, wrapped)
	c.JSON(http.StatusInternalServerError, wrapped.ToResponse())
}

func logFailure(c *gin.Context, appErr *apperrors.AppError) {
	fields := map[string]interface{}{
		"code":   string(appErr.Code),
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}
	if appErr.Cause != nil {
		fields["cause"] = appErr.Cause.Error()
	}
	if id := c.GetString(logger.FieldRequestID); id != "" {
		fields[logger.FieldRequestID] = id
	}
	logger.Error("Request failed", fields)
}
