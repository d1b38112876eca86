// Package grpc exposes the gRPC health service and reflection. Load
// balancers probe it to decide whether the instance can take traffic.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"freighthub-backend/internal/api/grpc/interceptor"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/security"
)

// ServiceName is the health service entry tracking the database.
const ServiceName = "freighthub.Backend"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	*grpc.Server
	health *health.Server
	db     Pinger
}

func NewServer(tokens security.TokenManager, db Pinger) *Server {
	auth := interceptor.NewAuthInterceptor(tokens)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.UnaryLogging(), auth.Unary()),
		grpc.ChainStreamInterceptor(auth.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	// Register reflection service for grpcurl
	reflection.Register(s)

	return &Server{Server: s, health: hs, db: db}
}

// CheckDatabase pings the store and publishes the result as the serving
// status of both the overall server and ServiceName.
func (s *Server) CheckDatabase(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		logger.Warn("Database health check failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

// WatchDatabase runs CheckDatabase every interval until ctx is done, then
// marks the server as shutting down.
func (s *Server) WatchDatabase(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.CheckDatabase(ctx)
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.CheckDatabase(ctx)
		}
	}
}
