package subscriber

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/fasthttp/websocket"
	"github.com/goccy/go-json"

	"github.com/flashbots/flashblocks-ssz/flashblock"
)

// parseMessage decodes a flashblock from a websocket message. Binary messages
// that do not hold plain JSON are expected to be brotli-compressed JSON.
func parseMessage(m *message) (*flashblock.Flashblock, error) {
	payload := m.bytes

	if m.msgType == websocket.BinaryMessage && !isJSONObject(payload) {
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(payload)))
		if err != nil {
			return nil, fmt.Errorf("%w: brotli: %w",
				ErrMessageParse, err,
			)
		}
		payload = decompressed
	}

	fb := &flashblock.Flashblock{}
	if err := json.Unmarshal(payload, fb); err != nil {
		return nil, fmt.Errorf("%w: %w",
			ErrMessageParse, err,
		)
	}

	return fb, nil
}

func isJSONObject(b []byte) bool {
	b = bytes.TrimLeft(b, " \t\r\n")
	return len(b) > 0 && b[0] == '{'
}
