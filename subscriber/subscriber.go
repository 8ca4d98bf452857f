// Package subscriber collects flashblocks from a websocket stream for a
// bounded amount of time.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flashbots/flashblocks-ssz/config"
	"github.com/flashbots/flashblocks-ssz/flashblock"
	"github.com/flashbots/flashblocks-ssz/metrics"
	"github.com/flashbots/flashblocks-ssz/utils"
)

var (
	// ErrTransport is returned when the connection can not be established or
	// fails while streaming.
	ErrTransport = errors.New("flashblocks stream transport failure")

	// ErrMessageParse is returned when a received message is not a
	// well-formed flashblock.
	ErrMessageParse = errors.New("failed to parse flashblock message")
)

type Subscriber struct {
	cfg *config.Gather

	dialer *websocket.Dialer
	logger *zap.Logger
}

type message struct {
	msgType int
	bytes   []byte
	ts      time.Time
}

type readResult struct {
	message *message
	err     error
}

func New(cfg *config.Gather) (*Subscriber, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: empty url", ErrTransport)
	}

	return &Subscriber{
		cfg:    cfg,
		logger: zap.L().With(zap.String("url", cfg.URL)),

		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			Proxy:            http.ProxyFromEnvironment,
			ReadBufferSize:   cfg.ReadBufferSize * 1024 * 1024,
		},
	}, nil
}

// Gather connects to the stream and collects flashblocks in arrival order
// until the duration elapses. Any transport or parse failure aborts the whole
// collection and nothing gathered so far is returned.
func (s *Subscriber) Gather(ctx context.Context, duration time.Duration) (
	[]*flashblock.Flashblock, error,
) {
	l := s.logger.With(
		zap.String("session_id", uuid.NewString()),
	)
	defer l.Sync() //nolint:errcheck

	l.Info("Gathering flashblocks...",
		zap.Duration("duration", duration),
	)

	flashblocks, err := s.gather(ctx, duration, l)
	if err != nil {
		metrics.GatherFailureCount.Add(ctx, 1)
		l.Error("Failed to gather flashblocks",
			zap.Error(err),
		)
		return nil, err
	}

	l.Info("Gathered flashblocks",
		zap.Int("count", len(flashblocks)),
	)

	return flashblocks, nil
}

func (s *Subscriber) gather(
	ctx context.Context,
	duration time.Duration,
	l *zap.Logger,
) ([]*flashblock.Flashblock, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: handshake: %w",
			ErrTransport, err,
		)
	}
	defer conn.Close()

	l.Debug("Connected to flashblocks stream",
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	flashblocks := make([]*flashblock.Flashblock, 0)
	if duration <= 0 {
		return flashblocks, nil
	}

	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	done := make(chan struct{})
	defer close(done) // runs before conn.Close()

	reads := s.read(conn, done)

	for {
		select { // expired deadline always wins over pending messages
		case <-deadline.C:
			return flashblocks, nil
		default:
		}

		select {
		case <-deadline.C:
			return flashblocks, nil

		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w",
				ErrTransport, ctx.Err(),
			)

		case r := <-reads:
			select {
			case <-deadline.C:
				return flashblocks, nil
			default:
			}

			if r.err != nil {
				return nil, fmt.Errorf("%w: read: %w",
					ErrTransport, r.err,
				)
			}

			fb, err := parseMessage(r.message)
			if err != nil {
				l.Debug("Received malformed message",
					zap.Int("message_size", len(r.message.bytes)),
					zap.String("websocket_message", utils.Str(r.message.bytes)),
				)
				return nil, err
			}

			flashblocks = append(flashblocks, fb)

			metrics.FlashblocksReceivedCount.Add(ctx, 1)
			l.Debug("Received flashblock", prepareLogFields(r.message, fb)...)
		}
	}
}

// read pumps messages from the connection until it fails or done is closed.
func (s *Subscriber) read(conn *websocket.Conn, done <-chan struct{}) <-chan readResult {
	reads := make(chan readResult)

	go func() {
		for {
			var r readResult

			if err := conn.SetReadDeadline(utils.Deadline(s.cfg.ReadTimeout)); err != nil {
				r.err = err
			} else if msgType, bytes, err := conn.ReadMessage(); err != nil {
				r.err = err
			} else {
				r.message = &message{
					msgType: msgType,
					bytes:   bytes,
					ts:      time.Now(),
				}
			}

			select {
			case reads <- r:
			case <-done:
				return
			}

			if r.err != nil {
				return
			}
		}
	}()

	return reads
}

func prepareLogFields(m *message, fb *flashblock.Flashblock) []zap.Field {
	loggedFields := make([]zap.Field, 0, 8)

	loggedFields = append(loggedFields,
		zap.Time("ts_message_received", m.ts),
		zap.Int("message_type", m.msgType),
		zap.Int("message_size", len(m.bytes)),
		zap.String("payload_id", fb.PayloadID.String()),
		zap.Uint64("index", fb.Index),
		zap.Bool("has_base", fb.Base != nil),
	)

	txs := fb.Diff.DecodeTransactions()
	if len(txs) > 0 {
		loggedFields = append(loggedFields,
			zap.Array("txs", txs),
		)
	}
	if undecodable := txs.Undecodable(); undecodable > 0 {
		loggedFields = append(loggedFields,
			zap.Int("txs_undecodable", undecodable),
		)
	}

	return loggedFields
}
