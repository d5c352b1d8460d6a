package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

func startBufServer(t *testing.T) (*Server, *grpc.ClientConn) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	cfg := DefaultServerConfig()
	cfg.EnableReflection = false
	srv := NewServer(cfg)

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := Dial(DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return srv, conn
}

func TestHealthService(t *testing.T) {
	srv, conn := startBufServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.SetServing("robolang.v1.Validator", true)
	if err := CheckHealth(ctx, conn, "robolang.v1.Validator"); err != nil {
		t.Errorf("CheckHealth() error = %v", err)
	}

	srv.SetServing("robolang.v1.Validator", false)
	if err := CheckHealth(ctx, conn, "robolang.v1.Validator"); err == nil {
		t.Error("CheckHealth() should fail for a service that is not serving")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	_, conn := startBufServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ctx = WithRequestID(ctx, "req-42")
	var header metadata.MD
	_, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	got := header.Get(RequestIDHeader)
	if len(got) != 1 || got[0] != "req-42" {
		t.Errorf("x-request-id header = %v, want [req-42]", got)
	}
}

func TestGetRequestIDFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "abc"))
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want abc", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestAddressBeforeStart(t *testing.T) {
	srv := NewServer(ServerConfig{Host: "127.0.0.1", Port: 9999})
	if got := srv.Address(); got != "127.0.0.1:9999" {
		t.Errorf("Address() = %q", got)
	}
}
