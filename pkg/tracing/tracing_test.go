package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestStartSpanRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	SetTracer(provider.Tracer("test"))
	t.Cleanup(func() { SetTracer(nil) })

	ctx, span := StartSpan(context.Background(), "metadata.GetFieldMapping")
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, "metadata.GetFieldMapping", ended[0].Name())
		assert.Equal(t, "boom", ended[0].Status().Description)
	}
}
