package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// FormServiceName is the service name reported through grpc.health.v1.Health.
const FormServiceName = "userform.v1.FormService"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter keeps the gRPC health status in line with database reachability.
type HealthReporter struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewHealthReporter creates a HealthReporter. Both services start as NOT_SERVING
// until the first check succeeds.
func NewHealthReporter(db Pinger, interval time.Duration, log *zap.Logger) *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(FormServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	timeout := 2 * time.Second
	if interval > 0 && interval < timeout {
		timeout = interval
	}

	return &HealthReporter{
		server:   srv,
		db:       db,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Register exposes the health service on s.
func (r *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Check pings the database once and publishes the result.
func (r *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := r.db.PingContext(ctx); err != nil {
		r.log.Warn("database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(FormServiceName, status)
	return status
}

// Run checks immediately and then on every interval until ctx is done,
// after which all services report NOT_SERVING.
func (r *HealthReporter) Run(ctx context.Context) error {
	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return nil
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}
