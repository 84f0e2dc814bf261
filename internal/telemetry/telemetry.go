// Package telemetry sets up OpenTelemetry tracing for the xstream server.
//
// New installs an SDK tracer provider exporting over OTLP/gRPC as the global
// provider, together with the W3C trace-context and baggage propagators.
// HTTPMiddleware and the client's otelhttp transport pick them up from the
// globals.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when Config.ServiceName is empty.
const DefaultServiceName = "xstream"

// Config selects the exporter and sampling.
type Config struct {
	Enabled bool
	// Endpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	Endpoint    string
	ServiceName string
	// SampleRate is the fraction of new traces recorded, 0 to 1.
	SampleRate  float64
	Environment string
}

// Telemetry owns the tracer provider installed by New.
type Telemetry struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

// New builds an OTLP exporter for cfg.Endpoint and installs the provider
// globally. When cfg.Enabled is false it returns a Telemetry backed by the
// current global provider and installs nothing.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{config: cfg, tracer: otel.Tracer(serviceName(cfg))}, nil
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP trace exporter for %s: %w", cfg.Endpoint, err)
	}
	return NewWithProcessor(ctx, cfg, sdktrace.NewBatchSpanProcessor(exporter))
}

// NewWithProcessor installs a provider that hands finished spans to sp.
func NewWithProcessor(ctx context.Context, cfg Config, sp sdktrace.SpanProcessor) (*Telemetry, error) {
	cfg.Enabled = true
	name := serviceName(cfg)
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(name),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Telemetry{config: cfg, tracerProvider: tp, tracer: tp.Tracer(name)}, nil
}

func serviceName(cfg Config) string {
	if cfg.ServiceName == "" {
		return DefaultServiceName
	}
	return cfg.ServiceName
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the tracer for manual spans.
func (t *Telemetry) Tracer() trace.Tracer { return t.tracer }

// Enabled reports whether New installed a provider.
func (t *Telemetry) Enabled() bool { return t.tracerProvider != nil }

// Shutdown flushes pending spans and stops the exporter.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.tracerProvider == nil {
		return nil
	}
	return t.tracerProvider.Shutdown(ctx)
}
