package tracing

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/starsandeep/sfsync/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs a global tracer provider for the service. With an empty
// endpoint spans go to the console exporter, which only logs them at debug.
// The returned function flushes and stops the provider.
func Setup(ctx context.Context, serviceName string, config exporters.OTLPConfig, logger ectologger.Logger) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	if config.Endpoint == "" {
		exporter = exporters.NewConsoleExporter(logger)
	} else {
		otlp, err := exporters.NewOTLPExporter(ctx, config)
		if err != nil {
			return nil, err
		}
		exporter = otlp
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	SetTracer(provider.Tracer(serviceName))

	return provider.Shutdown, nil
}
