package subscriber_test

import (
	"bytes"
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fasthttp/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/flashbots/flashblocks-ssz/config"
	"github.com/flashbots/flashblocks-ssz/flashblock"
	"github.com/flashbots/flashblocks-ssz/logutils"
	"github.com/flashbots/flashblocks-ssz/subscriber"
)

type frame struct {
	msgType int
	payload []byte
}

func fixture(t *testing.T) []*flashblock.Flashblock {
	t.Helper()

	b, err := os.ReadFile("../flashblock/testdata/flashblocks.json")
	require.NoError(t, err)

	flashblocks := make([]*flashblock.Flashblock, 0)
	require.NoError(t, json.Unmarshal(b, &flashblocks))

	return flashblocks
}

func textFrames(t *testing.T, flashblocks []*flashblock.Flashblock) []frame {
	t.Helper()

	frames := make([]frame, 0, len(flashblocks))
	for _, fb := range flashblocks {
		b, err := json.Marshal(fb)
		require.NoError(t, err)
		frames = append(frames, frame{msgType: websocket.TextMessage, payload: b})
	}

	return frames
}

// serve starts a websocket server that sends the frames to every client and
// then either hangs up or keeps the connection open until the client leaves.
func serve(t *testing.T, frames []frame, hangUp bool) string {
	t.Helper()

	upgrader := &websocket.FastHTTPUpgrader{}
	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			_ = upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
				defer conn.Close()

				for _, f := range frames {
					if err := conn.WriteMessage(f.msgType, f.payload); err != nil {
						return
					}
				}
				if hangUp {
					return
				}
				for {
					if _, _, err := conn.ReadMessage(); err != nil {
						return
					}
				}
			})
		},
		Logger: logutils.FasthttpLogger(zap.L()),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = srv.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = ln.Close()
	})

	return "ws://" + ln.Addr().String() + "/ws"
}

func newSubscriber(t *testing.T, url string) *subscriber.Subscriber {
	t.Helper()

	s, err := subscriber.New(&config.Gather{
		HandshakeTimeout: time.Second,
		ReadBufferSize:   1,
		ReadTimeout:      10 * time.Second,
		URL:              url,
	})
	require.NoError(t, err)

	return s
}

func TestGatherInArrivalOrder(t *testing.T) {
	flashblocks := fixture(t)
	url := serve(t, textFrames(t, flashblocks), false)

	got, err := newSubscriber(t, url).Gather(context.Background(), 500*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, got, len(flashblocks))
	for idx := range flashblocks {
		assert.Equal(t, flashblocks[idx], got[idx])
	}
}

func TestGatherZeroDuration(t *testing.T) {
	url := serve(t, textFrames(t, fixture(t)), false)

	got, err := newSubscriber(t, url).Gather(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGatherMalformedMessage(t *testing.T) {
	frames := textFrames(t, fixture(t))
	frames = append(frames, frame{msgType: websocket.TextMessage, payload: []byte(`{"index": "not a number"}`)})
	url := serve(t, frames, false)

	got, err := newSubscriber(t, url).Gather(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, subscriber.ErrMessageParse)
	assert.Nil(t, got)
}

func TestGatherNullWithdrawal(t *testing.T) {
	frames := textFrames(t, fixture(t))
	frames[1].payload = bytes.Replace(frames[1].payload,
		[]byte(`"withdrawals":[`), []byte(`"withdrawals":[null,`), 1,
	)
	require.Contains(t, string(frames[1].payload), `"withdrawals":[null,`)
	url := serve(t, frames, false)

	got, err := newSubscriber(t, url).Gather(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, subscriber.ErrMessageParse)
	assert.Nil(t, got)
}

func TestGatherHandshakeFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "ws://" + ln.Addr().String() + "/ws"
	require.NoError(t, ln.Close())

	got, err := newSubscriber(t, url).Gather(context.Background(), time.Second)
	assert.ErrorIs(t, err, subscriber.ErrTransport)
	assert.Nil(t, got)
}

func TestGatherConnectionClosed(t *testing.T) {
	url := serve(t, textFrames(t, fixture(t))[:1], true)

	got, err := newSubscriber(t, url).Gather(context.Background(), 5*time.Second)
	assert.ErrorIs(t, err, subscriber.ErrTransport)
	assert.Nil(t, got)
}

func TestGatherCancelled(t *testing.T) {
	url := serve(t, nil, false)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	got, err := newSubscriber(t, url).Gather(ctx, 5*time.Second)
	assert.ErrorIs(t, err, subscriber.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, got)
}

func TestGatherBrotliFrames(t *testing.T) {
	flashblocks := fixture(t)

	frames := make([]frame, 0, len(flashblocks))
	for _, f := range textFrames(t, flashblocks) {
		buf := &bytes.Buffer{}
		w := brotli.NewWriter(buf)
		_, err := w.Write(f.payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		frames = append(frames, frame{msgType: websocket.BinaryMessage, payload: buf.Bytes()})
	}
	url := serve(t, frames, false)

	got, err := newSubscriber(t, url).Gather(context.Background(), 500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, flashblocks, got)
}

func TestNewRequiresURL(t *testing.T) {
	_, err := subscriber.New(&config.Gather{})
	assert.ErrorIs(t, err, subscriber.ErrTransport)
}
