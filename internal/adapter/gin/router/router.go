package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-form-service/internal/adapter/gin/handler"
	"user-form-service/internal/adapter/gin/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter.
// Docs is optional; a nil value leaves the Swagger routes unregistered.
type Handlers struct {
	Page       *handler.PageHandler
	Submission *handler.SubmissionHandler
	Health     *handler.HealthHandler
	Docs       *handler.DocsHandler
}

// SetupRouter configures and returns a Gin router with all routes and middleware.
// rateLimiter may be nil, in which case submissions are not limited.
func SetupRouter(h Handlers, rateLimiter *middleware.RateLimiter, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	router.GET("/", h.Page.Index)

	submit := []gin.HandlerFunc{}
	if rateLimiter != nil {
		submit = append(submit, rateLimiter.Handler())
	}
	submit = append(submit, h.Submission.Submit)
	router.POST("/submit", submit...)

	router.GET("/health", h.Health.Health)

	if h.Docs != nil {
		router.GET("/swagger/*any", h.Docs.Serve)
	}

	return router
}
