package metrics

import (
	"context"

	"go.opentelemetry.io/otel/exporters/prometheus"
	otelapi "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	metricsNamespace = "flashblocks_ssz"
)

var (
	meter otelapi.Meter
)

func Setup(ctx context.Context) error {
	for _, setup := range []func(context.Context) error{
		setupMeter, // must come first
		setupFlashblocksReceivedCount,
		setupGatherFailureCount,
		setupEncodedSize,
		setupEncodeDuration,
	} {
		if err := setup(ctx); err != nil {
			return err
		}
	}

	return nil
}

func setupMeter(ctx context.Context) error {
	res, err := resource.New(ctx)
	if err != nil {
		return err
	}

	exporter, err := prometheus.New(
		prometheus.WithNamespace(metricsNamespace),
		prometheus.WithoutScopeInfo(),
	)
	if err != nil {
		return err
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)

	meter = provider.Meter(metricsNamespace)

	return nil
}

func setupFlashblocksReceivedCount(ctx context.Context) error {
	m, err := meter.Int64Counter("flashblocks_received_count",
		otelapi.WithDescription("count of flashblocks received from the stream"),
	)
	if err != nil {
		return err
	}
	FlashblocksReceivedCount = m
	return nil
}

func setupGatherFailureCount(ctx context.Context) error {
	m, err := meter.Int64Counter("gather_failure_count",
		otelapi.WithDescription("count of aborted gather sessions"),
	)
	if err != nil {
		return err
	}
	GatherFailureCount = m
	return nil
}

func setupEncodedSize(ctx context.Context) error {
	m, err := meter.Int64Histogram("encoded_size",
		otelapi.WithDescription("size of the encoded flashblocks sequence"),
		otelapi.WithUnit("By"),
	)
	if err != nil {
		return err
	}
	EncodedSize = m
	return nil
}

func setupEncodeDuration(ctx context.Context) error {
	m, err := meter.Float64Histogram("encode_duration",
		otelapi.WithDescription("time spent encoding the flashblocks sequence"),
		otelapi.WithUnit("s"),
	)
	if err != nil {
		return err
	}
	EncodeDuration = m
	return nil
}
