package metrics

import (
	otelapi "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments are no-ops until Setup is called.
var (
	FlashblocksReceivedCount otelapi.Int64Counter = noop.Int64Counter{}
	GatherFailureCount       otelapi.Int64Counter = noop.Int64Counter{}

	EncodedSize    otelapi.Int64Histogram   = noop.Int64Histogram{}
	EncodeDuration otelapi.Float64Histogram = noop.Float64Histogram{}
)
