package exporters

import (
	"context"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ConsoleExporter writes finished spans to the debug log.
type ConsoleExporter struct {
	logger ectologger.Logger
}

func NewConsoleExporter(logger ectologger.Logger) *ConsoleExporter {
	return &ConsoleExporter{logger: logger}
}

func (c *ConsoleExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	for _, span := range spans {
		c.logger.WithFields(map[string]any{
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
			"duration": span.EndTime().Sub(span.StartTime()).String(),
			"status":   span.Status().Code.String(),
		}).Debugf("span %s", span.Name())
	}
	return nil
}

func (c *ConsoleExporter) Shutdown(ctx context.Context) error {
	return nil
}
