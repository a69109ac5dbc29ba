package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apphost/logger"
)

const tracerName = "github.com/kbukum/apphost"

// TracerConfig configures span export.
type TracerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`

	// ServiceName and ServiceVersion are filled in by the bootstrap.
	ServiceName    string `yaml:"-" mapstructure:"-"`
	ServiceVersion string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets the endpoint and sample rate when unset.
func (c *TracerConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

var (
	mu     sync.Mutex
	active *sdktrace.TracerProvider
)

// InitTracer installs an OTLP exporting provider when cfg.Enabled. When
// disabled it returns nil and spans stay no-ops.
func InitTracer(ctx context.Context, cfg TracerConfig, log *logger.Logger) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.ApplyDefaults()

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	Install(tp)

	if log != nil {
		log.Info("Tracer initialized", logger.Fields("endpoint", cfg.Endpoint, "sample_rate", cfg.SampleRate))
	}
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Install makes tp the global provider and the one flushed by Shutdown.
func Install(tp *sdktrace.TracerProvider) {
	mu.Lock()
	active = tp
	mu.Unlock()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes and stops the installed provider. It is a no-op when
// tracing was never enabled and safe to call more than once.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	tp := active
	active = nil
	mu.Unlock()
	if tp == nil {
		return nil
	}
	if err := tp.ForceFlush(ctx); err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	return tp.Shutdown(ctx)
}

// StartSpan starts a span from the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Bootstrap span names.
const (
	SpanResolveMode         = "bootstrap.resolve_mode"
	SpanLoadConfig          = "bootstrap.load_config"
	SpanValidateCertificate = "bootstrap.validate_certificate"
	SpanCompose             = "bootstrap.compose"
	SpanRoute               = "bootstrap.route"
	SpanShutdown            = "bootstrap.shutdown"
)

// Attribute keys.
const (
	AttrMode    = "apphost.mode"
	AttrStep    = "apphost.step"
	AttrBinding = "apphost.binding"
)
