package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealth(t *testing.T, checks map[string]DependencyCheck) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := NewHealthServer(logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond, checks)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthServer(t *testing.T) {
	t.Run("should report serving when every dependency passes", func(t *testing.T) {
		// Given
		client := startHealth(t, map[string]DependencyCheck{
			"storage": func(context.Context) error { return nil },
		})

		// When / Then
		require.Eventually(t, func() bool {
			resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
			return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
		}, time.Second, 10*time.Millisecond)

		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "storage"})
		require.NoError(t, err)
		require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
	})

	t.Run("should flip to not serving when a dependency starts failing", func(t *testing.T) {
		// Given
		var broken atomic.Bool
		client := startHealth(t, map[string]DependencyCheck{
			"storage": func(context.Context) error {
				if broken.Load() {
					return errors.New("database closed")
				}
				return nil
			},
		})

		// When
		broken.Store(true)

		// Then
		require.Eventually(t, func() bool {
			resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
			return err == nil && resp.Status == healthpb.HealthCheckResponse_NOT_SERVING
		}, time.Second, 10*time.Millisecond)
	})
}
