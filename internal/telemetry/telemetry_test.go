package telemetry

import (
	"context"
	"testing"
)

func TestInitTelemetryEmptyEndpoint(t *testing.T) {
	// No endpoint means no exporters, but init must still succeed.
	shutdown, err := InitTelemetry(context.Background(), "haaangry-backend", "0.1.0", "test", "", nil)
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}
	if shutdown != nil {
		defer shutdown(context.Background())
	}
}

func TestTracer(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("Tracer returned nil")
	}
}

func TestMiddleware(t *testing.T) {
	if Middleware() == nil {
		t.Fatal("Middleware returned nil")
	}
}
