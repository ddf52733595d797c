package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-form-service/pkg/errors"
	"user-form-service/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleError converts use case errors to HTTP responses.
// Messages of internal and unavailable errors stay in the log.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	httpErr := apperrors.AsHTTPError(err)
	status := httpErr.HTTPStatus()

	message := httpErr.Error()
	if status >= 500 {
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		message = "the submission could not be stored, please try again later"
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   httpErr.Code(),
		Message: message,
	})
}
