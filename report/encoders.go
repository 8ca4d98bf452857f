package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

const (
	brotliQuality = 5
	brotliLGWin   = 22
)

var (
	errReportRoundTripMismatch = errors.New("ssz round-trip mismatch")
)

type encodeFunc func([]*flashblock.Flashblock) ([]byte, error)

func encodeJSON(flashblocks []*flashblock.Flashblock) ([]byte, error) {
	return json.Marshal(flashblocks)
}

func encodeSSZ(flashblocks []*flashblock.Flashblock) ([]byte, error) {
	return flashblock.List(flashblocks).MarshalSSZ()
}

// verified decodes the encoded sequence back and checks its length.
func verified(encode encodeFunc) encodeFunc {
	return func(flashblocks []*flashblock.Flashblock) ([]byte, error) {
		b, err := encode(flashblocks)
		if err != nil {
			return nil, err
		}

		decoded := flashblock.List{}
		if err := decoded.UnmarshalSSZ(b); err != nil {
			return nil, fmt.Errorf("%w: %w",
				errReportRoundTripMismatch, err,
			)
		}
		if len(decoded) != len(flashblocks) {
			return nil, fmt.Errorf("%w: encoded %d flashblocks, decoded %d",
				errReportRoundTripMismatch, len(flashblocks), len(decoded),
			)
		}

		return b, nil
	}
}

func gzipped(encode encodeFunc) encodeFunc {
	return func(flashblocks []*flashblock.Flashblock) ([]byte, error) {
		b, err := encode(flashblocks)
		if err != nil {
			return nil, err
		}

		buf := &bytes.Buffer{}
		w, err := gzip.NewWriterLevel(buf, gzip.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}
}

func brotlied(encode encodeFunc) encodeFunc {
	return func(flashblocks []*flashblock.Flashblock) ([]byte, error) {
		b, err := encode(flashblocks)
		if err != nil {
			return nil, err
		}

		buf := &bytes.Buffer{}
		w := brotli.NewWriterOptions(buf, brotli.WriterOptions{
			Quality: brotliQuality,
			LGWin:   brotliLGWin,
		})
		if _, err := w.Write(b); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}
}
