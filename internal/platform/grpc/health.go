package grpc

import (
	"context"
	"fmt"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	healthProbeTimeout = time.Second
	healthBackoffStart = 100 * time.Millisecond
	healthBackoffMax   = time.Second
)

// RegisterHealth installs a health server reporting SERVING for the whole
// server ("") and for each named service.
func RegisterHealth(server *gogrpc.Server, services ...string) *health.Server {
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, hs)
	for _, name := range append([]string{""}, services...) {
		hs.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	return hs
}

// WaitForHealth polls the health service for service until it reports
// SERVING, backing off from 100ms to 1s between probes. logf, when set,
// receives one line per probe.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	wait := healthBackoffStart
	for {
		serving, probeErr := probeHealth(ctx, client, service)
		switch {
		case serving:
			logf("gRPC health check is SERVING")
			return nil
		case probeErr != nil:
			logf("waiting for gRPC health: %v", probeErr)
		default:
			logf("waiting for gRPC health: not serving")
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for gRPC health: %w", ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, healthBackoffMax)
	}
}

func probeHealth(ctx context.Context, client grpc_health_v1.HealthClient, service string) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	resp, err := client.Check(probeCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return false, err
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING, nil
}
