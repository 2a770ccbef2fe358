package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	InstrumentationName = "github.com/cuihairu/smshook"

	IngestRequestsMetric = "smshook.ingest.requests"
	IngestLatencyMetric  = "smshook.ingest.latency"
)

// OutcomeKey labels ingest instruments with the webhook outcome.
const OutcomeKey = attribute.Key("outcome")

// IngestMetrics 记录 webhook 处理结果与耗时
type IngestMetrics struct {
	Requests metric.Int64Counter
	Latency  metric.Float64Histogram
}

func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	var err error
	m := &IngestMetrics{}

	m.Requests, err = meter.Int64Counter(IngestRequestsMetric,
		metric.WithDescription("Webhook requests by outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, err
	}

	m.Latency, err = meter.Float64Histogram(IngestLatencyMetric,
		metric.WithDescription("Webhook handling latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewGlobalIngestMetrics uses the global meter provider, which is a noop
// until NewProvider installs one.
func NewGlobalIngestMetrics() (*IngestMetrics, error) {
	return NewIngestMetrics(otel.Meter(InstrumentationName))
}

// Observe records one finished webhook request.
func (m *IngestMetrics) Observe(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(OutcomeKey.String(outcome))
	m.Requests.Add(ctx, 1, attrs)
	m.Latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

func Tracer() oteltrace.Tracer { return otel.Tracer(InstrumentationName) }
