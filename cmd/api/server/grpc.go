package server

import (
	"google.golang.org/grpc"

	grpcadapter "user-form-service/internal/adapter/grpc"
	"user-form-service/pkg/logger"
)

// SetupGRPC creates the gRPC server exposing the health service
func SetupGRPC(health *grpcadapter.HealthReporter) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)
	health.Register(grpcServer)

	return grpcServer
}
