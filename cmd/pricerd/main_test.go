package main

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealthServer(t *testing.T) (*grpc.Server, *grpc.ClientConn) {
	t.Helper()

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, health.NewServer())
	lis := bufconn.Listen(1 << 16)
	go func() {
		_ = gs.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return gs, conn
}

func TestStopGRPCIdle(t *testing.T) {
	gs, _ := startHealthServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if stopGRPC(ctx, gs) {
		t.Fatalf("idle server should drain without forcing")
	}
}

func TestStopGRPCForcesAfterDeadline(t *testing.T) {
	gs, conn := startHealthServer(t)

	// A Watch stream stays open until the server goes away, so GracefulStop
	// alone would block on it.
	streamCtx, streamCancel := context.WithCancel(context.Background())
	defer streamCancel()
	stream, err := healthpb.NewHealthClient(conn).Watch(streamCtx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("Recv: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if !stopGRPC(ctx, gs) {
		t.Fatalf("expected the drain to be cut short by the deadline")
	}
	if waited := time.Since(start); waited > 5*time.Second {
		t.Fatalf("stopGRPC took %v, expected it to honour the deadline", waited)
	}
}
