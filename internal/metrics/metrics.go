package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// AppMetrics bundles the application counters. A nil *AppMetrics is a
// valid no-op receiver so callers never have to branch on telemetry
// being configured.
type AppMetrics struct {
	cartOperations metric.Int64Counter
	ordersPlaced   metric.Int64Counter
	orderValue     metric.Float64Histogram
	revenueTotal   metric.Float64Counter
}

// Init configures the OTLP HTTP exporter and returns the application
// metrics plus the provider to shut down on exit. An empty endpoint
// returns (nil, nil, nil): metrics disabled.
func Init(ctx context.Context, endpoint, serviceName string, insecure bool) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	if endpoint == "" {
		return nil, nil, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build resource: %w", err)
	}

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second),
		)),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)
	m := &AppMetrics{}

	if m.cartOperations, err = meter.Int64Counter(
		"cart.operations.count",
		metric.WithDescription("Cart mutations by operation"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, err
	}
	if m.ordersPlaced, err = meter.Int64Counter(
		"orders.placed.count",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, err
	}
	if m.orderValue, err = meter.Float64Histogram(
		"orders.value",
		metric.WithDescription("Order total amount"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, err
	}
	if m.revenueTotal, err = meter.Float64Counter(
		"revenue.total",
		metric.WithDescription("Cumulative order revenue"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, nil, err
	}

	return m, provider, nil
}

// RecordCartOperation counts a cart mutation, labelled by operation
// ("add", "update", "remove", "clear").
func (m *AppMetrics) RecordCartOperation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.cartOperations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordOrderPlaced counts an order and its revenue.
func (m *AppMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, paymentMethod string) {
	if m == nil {
		return
	}
	amount := total.InexactFloat64()
	attrs := metric.WithAttributes(attribute.String("payment_method", paymentMethod))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderValue.Record(ctx, amount, attrs)
	m.revenueTotal.Add(ctx, amount, attrs)
}
