package grpc

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const bufAddr = "passthrough:///bufnet"

type healthHarness struct {
	health *health.Server
	dial   gogrpc.DialOption
}

// newHealthHarness serves a health server over bufconn for the test's
// lifetime. The named service starts NOT_SERVING.
func newHealthHarness(t *testing.T, service string) healthHarness {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := gogrpc.NewServer()
	hs := RegisterHealth(srv, service)
	hs.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = srv.Serve(lis)
	}()
	t.Cleanup(func() {
		srv.Stop()
		wg.Wait()
	})
	return healthHarness{
		health: hs,
		dial: gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	}
}

func (h healthHarness) conn(t *testing.T) *gogrpc.ClientConn {
	t.Helper()
	conn, err := gogrpc.NewClient(bufAddr, h.dial, gogrpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRegisterHealthMarksServerServing(t *testing.T) {
	h := newHealthHarness(t, "cardclash.datastore.v1.DatastoreService")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := WaitForHealth(ctx, h.conn(t), "", nil); err != nil {
		t.Fatalf("wait for overall health: %v", err)
	}
}

func TestWaitForHealthWaitsForService(t *testing.T) {
	const service = "datastore"
	h := newHealthHarness(t, service)

	time.AfterFunc(150*time.Millisecond, func() {
		h.health.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var mu sync.Mutex
	var lines []string
	logf := func(format string, _ ...any) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, format)
	}
	if err := WaitForHealth(ctx, h.conn(t), service, logf); err != nil {
		t.Fatalf("wait for health: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(lines) < 2 || lines[len(lines)-1] != "gRPC health check is SERVING" {
		t.Fatalf("log lines = %v", lines)
	}
}

func TestWaitForHealthStopsWithContext(t *testing.T) {
	h := newHealthHarness(t, "datastore")
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	if err := WaitForHealth(ctx, h.conn(t), "datastore", nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWaitForHealthRequiresConnection(t *testing.T) {
	if err := WaitForHealth(context.Background(), nil, "", nil); err == nil {
		t.Fatal("expected missing connection error")
	}
}
