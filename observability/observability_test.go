package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/apphost/component"
)

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracer() error = %v", err)
	}
	if tp != nil {
		t.Error("expected nil provider when tracing is disabled")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() without provider error = %v", err)
	}
}

func TestTracerConfig_ApplyDefaults(t *testing.T) {
	cfg := TracerConfig{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
}

func TestSpansFlushedOnShutdown(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	Install(sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)))

	_, span := StartSpan(context.Background(), SpanCompose)
	EndSpan(span, nil)
	_, failed := StartSpan(context.Background(), SpanValidateCertificate)
	EndSpan(failed, errors.New("certificate missing"))

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != SpanCompose {
		t.Errorf("first span = %q", spans[0].Name)
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("failed span status = %v", spans[1].Status.Code)
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	if sampler(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("rate 1 should always sample")
	}
	if sampler(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("rate 0 should never sample")
	}
	if sampler(0.5).Description() != sdktrace.TraceIDRatioBased(0.5).Description() {
		t.Error("rate 0.5 should be ratio based")
	}
}

type staticHealth []component.Health

func (s staticHealth) HealthAll(context.Context) []component.Health { return s }

func TestCollect(t *testing.T) {
	tests := []struct {
		name string
		src  staticHealth
		want component.HealthStatus
	}{
		{"empty", nil, component.StatusHealthy},
		{"all healthy", staticHealth{{Name: "a", Status: component.StatusHealthy}}, component.StatusHealthy},
		{"degraded", staticHealth{{Status: component.StatusHealthy}, {Status: component.StatusDegraded}}, component.StatusDegraded},
		{"unhealthy wins", staticHealth{{Status: component.StatusUnhealthy}, {Status: component.StatusDegraded}}, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh := Collect(context.Background(), "AppHost", "1.0.0", tt.src)
			if sh.Status != tt.want {
				t.Errorf("Status = %s, want %s", sh.Status, tt.want)
			}
			if sh.Healthy() != (tt.want != component.StatusUnhealthy) {
				t.Errorf("Healthy() = %v", sh.Healthy())
			}
		})
	}
}
