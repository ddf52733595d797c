package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-form-service/pkg/logger"
)

// RequestID reuses the inbound X-Request-ID header or generates one,
// stores it in the request context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(logger.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Header(logger.RequestIDHeader, requestID)

		c.Next()
	}
}
