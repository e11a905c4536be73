package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "matching.Candidates")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, TraceParent(ctx))
}

func TestStartSpanWithProvider(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := NewProvider("fern-test", exp)
	defer func() {
		_ = tp.Shutdown(context.Background())
		SetTracer(nil)
	}()

	ctx, span := StartSpan(context.Background(), "compare.Service.Compare", AttrProductA.String("a-1"))
	assert.Len(t, GetTraceID(ctx), 32)
	assert.Contains(t, TraceParent(ctx), GetTraceID(ctx))
	Fail(span, errors.New("product not found"))
	Fail(span, nil)
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "fern.compare.Service.Compare", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "product not found", spans[0].Status.Description)
	assert.Contains(t, spans[0].Attributes, AttrProductA.String("a-1"))
}

func TestNewExporter_FallsBackToLog(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	exp, err := NewExporter(context.Background(), ExporterConfig{Protocol: "grpc"}, logger)
	require.NoError(t, err)

	logExp, ok := exp.(*LogExporter)
	require.True(t, ok)
	assert.NotNil(t, logExp.Logger)
}

func TestNewExporter_OTLP(t *testing.T) {
	for _, protocol := range []string{"grpc", "http"} {
		t.Run(protocol, func(t *testing.T) {
			exp, err := NewExporter(context.Background(), ExporterConfig{
				Endpoint: "localhost:4317",
				Protocol: protocol,
				Insecure: true,
				Headers:  map[string]string{"x-fern": "1"},
			}, nil)
			require.NoError(t, err)
			assert.IsType(t, &otlptrace.Exporter{}, exp)
			assert.NoError(t, exp.Shutdown(context.Background()))
		})
	}
}

func TestNewExporter_UnsupportedProtocol(t *testing.T) {
	_, err := NewExporter(context.Background(), ExporterConfig{Endpoint: "localhost:4317", Protocol: "zipkin"}, nil)
	assert.ErrorContains(t, err, "unsupported OTLP protocol")
}
