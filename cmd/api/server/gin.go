package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-form-service/internal/adapter/gin/middleware"
	ginrouter "user-form-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the HTTP server for the form routes
func SetupGinServer(
	handlers ginrouter.Handlers,
	rateLimiter *middleware.RateLimiter,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handlers, rateLimiter, l)

	l.Info("HTTP routes configured",
		zap.String("address", addr),
		zap.Bool("rate_limited", rateLimiter != nil),
		zap.Bool("swagger", handlers.Docs != nil),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
