package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the OTel meter used for chat metrics and the tracer used for pipeline spans.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	chatCounter   otelmetric.Int64Counter
	chatDuration  otelmetric.Float64Histogram
	toolCounter   otelmetric.Int64Counter
	tracer        trace.Tracer
	shutdownTrace func(context.Context) error
}

// New registers a Prometheus-backed meter provider. Tracing is attached separately with WithTracing.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o := newWithMeter(provider.Meter(serviceName))
	o.meterProvider = provider
	return o, nil
}

// NewNoop returns an Observability that records nothing. Used by tests and tools.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

func newWithMeter(meter otelmetric.Meter) *Observability {
	chatCounter, _ := meter.Int64Counter(
		"chat.requests",
		otelmetric.WithDescription("Number of chat requests processed"),
	)

	chatDuration, _ := meter.Float64Histogram(
		"chat.duration",
		otelmetric.WithDescription("Chat request processing duration"),
		otelmetric.WithUnit("ms"),
	)

	toolCounter, _ := meter.Int64Counter(
		"chat.tool.executions",
		otelmetric.WithDescription("Number of tool executions"),
	)

	return &Observability{
		meter:        meter,
		chatCounter:  chatCounter,
		chatDuration: chatDuration,
		toolCounter:  toolCounter,
		tracer:       otel.Tracer("support-chatbot"),
	}
}

func (o *Observability) RecordChatProcessed(ctx context.Context, outcome string) {
	if o.chatCounter != nil {
		o.chatCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordChatDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o.chatDuration != nil {
		o.chatDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordToolExecuted(ctx context.Context, tool string, found bool) {
	if o.toolCounter != nil {
		o.toolCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("tool", tool),
			attribute.Bool("found", found),
		))
	}
}

// StartSpan opens a span on the configured tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("support-chatbot")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.shutdownTrace != nil {
		_ = o.shutdownTrace(ctx)
	}
}
