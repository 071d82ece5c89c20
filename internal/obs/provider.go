package obs

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// NewMeterProvider builds an sdkmetric.MeterProvider bridged to a
// Prometheus exporter, so instruments created against the returned
// provider are scraped through the Prometheus exporter's registry rather
// than pushed anywhere. serviceName/serviceVersion are attached to every
// exported series as resource attributes.
//
// Stops at the minimal counters/histograms the /metrics endpoint needs:
// no tracing provider, no OTLP exporter.
func NewMeterProvider(serviceName, serviceVersion string) (*sdkmetric.MeterProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	return mp, nil
}

// Shutdown flushes and closes mp. Call from a defer in main after the
// Prometheus handler has served its last scrape.
func Shutdown(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	return mp.Shutdown(ctx)
}
