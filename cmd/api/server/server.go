package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"user-form-service/internal/adapter/gin/middleware"
	ginrouter "user-form-service/internal/adapter/gin/router"
	grpcadapter "user-form-service/internal/adapter/grpc"
	"user-form-service/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
	GRPC   *grpc.Server // nil unless gRPC is enabled

	health   *grpcadapter.HealthReporter
	httpLis  net.Listener
	grpcLis  net.Listener
	listened bool
}

// New creates a new server instance. health may be nil, in which case no gRPC server is started.
func New(
	cfg *config.Config,
	l *zap.Logger,
	handlers ginrouter.Handlers,
	rateLimiter *middleware.RateLimiter,
	health *grpcadapter.HealthReporter,
) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(handlers, rateLimiter, httpAddress(cfg), l),
		health: health,
	}
	if health != nil {
		s.GRPC = SetupGRPC(health)
	}
	return s
}

// Start binds the listeners and serves until the servers stop or ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the HTTP (and gRPC) listening sockets.
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.HTTP.Addr, err)
	}
	s.httpLis = httpLis

	if s.GRPC != nil {
		grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", grpcAddress(s.Config), err)
		}
		s.grpcLis = grpcLis
	}

	s.listened = true
	return nil
}

// HTTPAddr returns the bound HTTP address, or the configured one before Listen.
func (s *Server) HTTPAddr() string {
	if s.httpLis != nil {
		return s.httpLis.Addr().String()
	}
	return s.HTTP.Addr
}

// GRPCAddr returns the bound gRPC address, or "" when gRPC is not listening.
func (s *Server) GRPCAddr() string {
	if s.grpcLis != nil {
		return s.grpcLis.Addr().String()
	}
	return ""
}

// Serve runs the servers on the bound listeners until ctx is canceled and
// Shutdown has stopped them. If one server fails the others are closed.
func (s *Server) Serve(ctx context.Context) error {
	if !s.listened {
		return errors.New("server is not listening")
	}

	g, gctx := errgroup.WithContext(ctx)

	s.Logger.Info("HTTP server running", zap.String("address", s.HTTPAddr()))
	g.Go(func() error {
		if err := s.HTTP.Serve(s.httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil {
		s.Logger.Info("gRPC server running", zap.String("address", s.GRPCAddr()))
		g.Go(func() error {
			if err := s.GRPC.Serve(s.grpcLis); err != nil {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			return s.health.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			// Canceled by the caller, which shuts down gracefully.
			return nil
		}
		_ = s.HTTP.Close()
		if s.GRPC != nil {
			s.GRPC.Stop()
		}
		return nil
	})

	return g.Wait()
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.HTTP.Shutdown(ctx); err != nil {
		s.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}

// grpcAddress returns the gRPC server address
func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.GRPC.Port
}
