// Package telemetry wires OpenTelemetry tracing for inference runs.
package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/xaviermathew/Aragog/internal/config"
)

// TracerName is the instrumentation scope of spans emitted by this module.
const TracerName = "github.com/xaviermathew/Aragog"

// Provider owns the tracer provider for shutdown.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Init registers an OTLP gRPC tracer provider when cfg.Enabled. When disabled
// it returns a nil Provider and leaves the global no-op provider in place.
// An endpoint with an http:// scheme is dialed without TLS.
func Init(ctx context.Context, cfg config.Telemetry, version string) (*Provider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	name := cfg.ServiceName
	if name == "" {
		name = config.DefaultServiceName
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(name),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	var opts []otlptracegrpc.Option
	switch ep := strings.TrimSpace(cfg.Endpoint); {
	case strings.Contains(ep, "://"):
		opts = append(opts, otlptracegrpc.WithEndpointURL(ep))
	case ep != "":
		opts = append(opts, otlptracegrpc.WithEndpoint(ep))
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return &Provider{tp: tp}, nil
}

// Shutdown flushes pending spans. Safe on a nil Provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer: %w", err)
	}
	return nil
}

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer { return otel.Tracer(TracerName) }

// NoopTracer returns a tracer that records nothing.
func NoopTracer() trace.Tracer { return noop.NewTracerProvider().Tracer("noop") }
