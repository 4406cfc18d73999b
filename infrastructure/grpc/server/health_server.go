// Package server exposes the standard gRPC health protocol so that
// orchestrators can check the chat engine without speaking HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const ServiceName = "chat-desk"

// DependencyCheck reports whether a dependency can serve traffic.
type DependencyCheck func(ctx context.Context) error

type HealthServer struct {
	log      *slog.Logger
	health   *health.Server
	grpc     *grpc.Server
	checks   map[string]DependencyCheck
	interval time.Duration
}

func NewHealthServer(log *slog.Logger, interval time.Duration, checks map[string]DependencyCheck) *HealthServer {
	s := &HealthServer{
		log:      log,
		health:   health.NewServer(),
		checks:   checks,
		interval: interval,
		grpc: grpc.NewServer(
			grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(log)),
		),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve checks the dependencies until ctx is cancelled and answers health
// checks on lis. It returns once the gRPC server has stopped.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	s.check(ctx)
	go s.watch(ctx)

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting gRPC health server", "address", lis.Addr().String())
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Stop flips every service to NOT_SERVING so in-flight watchers notice,
// then stops the gRPC server.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check runs every dependency check. The overall service is serving only
// when all of them pass; each one is also exposed under its own name.
func (s *HealthServer) check(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, dependency := range s.checks {
		status := healthpb.HealthCheckResponse_SERVING
		if err := dependency(ctx); err != nil {
			s.log.Warn("Health check failed", "dependency", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		s.health.SetServingStatus(name, status)
	}
	s.health.SetServingStatus(ServiceName, overall)
	s.health.SetServingStatus("", overall)
}
