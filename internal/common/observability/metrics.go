package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records deck and proxy events through an OpenTelemetry meter
// exported in Prometheus format.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	swipeCounter  otelmetric.Int64Counter
	rejectCounter otelmetric.Int64Counter
	proxyDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	swipeCounter, _ := meter.Int64Counter(
		"deck.swipes",
		otelmetric.WithDescription("Number of committed swipes"),
	)

	rejectCounter, _ := meter.Int64Counter(
		"deck.rejections",
		otelmetric.WithDescription("Number of resolved rejections"),
	)

	proxyDuration, _ := meter.Float64Histogram(
		"proxy.duration",
		otelmetric.WithDescription("Backend round trip through the proxy"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		swipeCounter:  swipeCounter,
		rejectCounter: rejectCounter,
		proxyDuration: proxyDuration,
	}
}

// NewNoop returns an Observability that records nothing.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordSwipe(ctx context.Context, direction, tier string) {
	if o != nil && o.swipeCounter != nil {
		o.swipeCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("direction", direction),
			attribute.String("tier", tier),
		))
	}
}

// RecordRejection tracks how a pending rejection ended: "commented", "skipped" or "comment_failed".
func (o *Observability) RecordRejection(ctx context.Context, outcome string) {
	if o != nil && o.rejectCounter != nil {
		o.rejectCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordProxyDuration(ctx context.Context, duration time.Duration, status int) {
	if o != nil && o.proxyDuration != nil {
		o.proxyDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.Int("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
