// Package report measures how compact a sequence of flashblocks gets under
// different encodings.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelapi "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flashbots/flashblocks-ssz/flashblock"
	"github.com/flashbots/flashblocks-ssz/logutils"
	"github.com/flashbots/flashblocks-ssz/metrics"
)

const (
	EncodingJSON       = "json"
	EncodingGzipJSON   = "gzip_json"
	EncodingBrotliJSON = "brotli_json"
	EncodingSSZ        = "ssz"
	EncodingGzipSSZ    = "gzip_ssz"
	EncodingBrotliSSZ  = "brotli_ssz"
)

var (
	errReportFailedToEncode = errors.New("failed to encode flashblocks")
)

// Report holds the byte length of the whole sequence per encoding.
type Report struct {
	Count int

	JSON       int
	GzipJSON   int
	BrotliJSON int
	SSZ        int
	GzipSSZ    int
	BrotliSSZ  int
}

type encoder struct {
	name   string
	size   *int
	encode encodeFunc
}

// Measure runs all encoders concurrently over the same (read-only) sequence.
func Measure(ctx context.Context, flashblocks []*flashblock.Flashblock) (*Report, error) {
	l := logutils.LoggerFromContext(ctx)

	r := &Report{Count: len(flashblocks)}

	encoders := []encoder{
		{name: EncodingJSON, size: &r.JSON, encode: encodeJSON},
		{name: EncodingGzipJSON, size: &r.GzipJSON, encode: gzipped(encodeJSON)},
		{name: EncodingBrotliJSON, size: &r.BrotliJSON, encode: brotlied(encodeJSON)},
		{name: EncodingSSZ, size: &r.SSZ, encode: verified(encodeSSZ)},
		{name: EncodingGzipSSZ, size: &r.GzipSSZ, encode: gzipped(encodeSSZ)},
		{name: EncodingBrotliSSZ, size: &r.BrotliSSZ, encode: brotlied(encodeSSZ)},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range encoders {
		g.Go(func() error {
			start := time.Now()
			b, err := e.encode(flashblocks)
			if err != nil {
				return fmt.Errorf("%w: %s: %w",
					errReportFailedToEncode, e.name, err,
				)
			}
			*e.size = len(b)

			attrs := otelapi.WithAttributes(
				attribute.KeyValue{Key: "encoding", Value: attribute.StringValue(e.name)},
			)
			metrics.EncodedSize.Record(ctx, int64(len(b)), attrs)
			metrics.EncodeDuration.Record(ctx, time.Since(start).Seconds(), attrs)

			l.Debug("Encoded flashblocks",
				zap.String("encoding", e.name),
				zap.Int("size", len(b)),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r, nil
}

// Print writes the byte lengths and the compression ratios.
func (r *Report) Print(w io.Writer) error {
	lines := []string{
		"",
		fmt.Sprintf("JSON bytes:        %d", r.JSON),
		fmt.Sprintf("GZIP JSON bytes:   %d", r.GzipJSON),
		fmt.Sprintf("Brotli JSON bytes: %d", r.BrotliJSON),
		fmt.Sprintf("SSZ bytes:         %d", r.SSZ),
		fmt.Sprintf("GZIP SSZ bytes:    %d", r.GzipSSZ),
		fmt.Sprintf("Brotli SSZ bytes:  %d", r.BrotliSSZ),
		"",
		fmt.Sprintf("JSON -> GZIP JSON: %s", ratio(r.JSON, r.GzipJSON)),
		fmt.Sprintf("JSON -> Brotli JSON: %s", ratio(r.JSON, r.BrotliJSON)),
		fmt.Sprintf("JSON -> SSZ: %s", ratio(r.JSON, r.SSZ)),
		fmt.Sprintf("JSON -> GZIP SSZ: %s", ratio(r.JSON, r.GzipSSZ)),
		fmt.Sprintf("JSON -> Brotli SSZ: %s", ratio(r.JSON, r.BrotliSSZ)),
		fmt.Sprintf("SSZ -> GZIP SSZ: %s", ratio(r.SSZ, r.GzipSSZ)),
		fmt.Sprintf("SSZ -> Brotli SSZ: %s", ratio(r.SSZ, r.BrotliSSZ)),
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func ratio(from, to int) string {
	if to == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.3fx improvement", float64(from)/float64(to))
}
