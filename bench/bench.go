// Package bench loads (or gathers) a sequence of flashblocks and reports how
// compact it is under JSON and SSZ encodings, raw and compressed.
package bench

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flashbots/flashblocks-ssz/config"
	"github.com/flashbots/flashblocks-ssz/flashblock"
	"github.com/flashbots/flashblocks-ssz/logutils"
	"github.com/flashbots/flashblocks-ssz/metrics"
	"github.com/flashbots/flashblocks-ssz/report"
	"github.com/flashbots/flashblocks-ssz/snapshot"
	"github.com/flashbots/flashblocks-ssz/subscriber"
	"github.com/flashbots/flashblocks-ssz/utils"
)

type Bench struct {
	cfg     *config.Config
	failure chan error
	logger  *zap.Logger
	out     io.Writer

	subscriber *subscriber.Subscriber

	metrics *http.Server
}

func New(cfg *config.Config) (*Bench, error) {
	b := &Bench{
		cfg:     cfg,
		logger:  zap.L(),
		failure: make(chan error, 16),
		out:     os.Stdout,
	}

	if cfg.Snapshot.Input == "" {
		s, err := subscriber.New(cfg.Gather)
		if err != nil {
			return nil, err
		}
		b.subscriber = s
	}

	if cfg.Metrics.ListenAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/", promhttp.Handler())
		mux.Handle("/metrics", promhttp.Handler())

		b.metrics = &http.Server{
			Addr:              cfg.Metrics.ListenAddress,
			Handler:           mux,
			MaxHeaderBytes:    1024,
			ReadHeaderTimeout: 30 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
	}

	return b, nil
}

func (b *Bench) Run(ctx context.Context) error {
	l := b.logger
	ctx = logutils.ContextWithLogger(ctx, l)

	if b.metrics != nil {
		if err := metrics.Setup(ctx); err != nil {
			return err
		}

		go func() { // run the metrics server
			l.Info("Metrics server is going up...",
				zap.String("server_listen_address", b.cfg.Metrics.ListenAddress),
			)
			if err := b.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				b.failure <- err
			}
			l.Info("Metrics server is down")
		}()
	}

	errs := []error{}

	if err := b.run(ctx); err != nil {
		errs = append(errs, err)
	}

exhaustErrors:
	for { // exhaust the errors
		select {
		case err := <-b.failure:
			l.Error("Internal failure",
				zap.Error(err),
			)
			errs = append(errs, err)
		default:
			break exhaustErrors
		}
	}

	if b.metrics != nil { // stop metrics server
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := b.metrics.Shutdown(ctx); err != nil {
			l.Error("Metrics server shutdown failed",
				zap.Error(err),
			)
		}
	}

	return utils.FlattenErrors(errs)
}

func (b *Bench) run(ctx context.Context) error {
	l := b.logger

	flashblocks, err := b.load(ctx)
	if err != nil {
		return err
	}
	l.Info("Loaded flashblocks",
		zap.Int("count", len(flashblocks)),
	)

	if b.cfg.Snapshot.Input == "" && b.cfg.Snapshot.Output != "" {
		if err := snapshot.Write(b.cfg.Snapshot.Output, flashblocks); err != nil {
			return err
		}
		l.Info("Wrote flashblocks to file",
			zap.String("path", b.cfg.Snapshot.Output),
		)
	}

	r, err := report.Measure(ctx, flashblocks)
	if err != nil {
		return err
	}

	return r.Print(b.out)
}

func (b *Bench) load(ctx context.Context) ([]*flashblock.Flashblock, error) {
	if b.cfg.Snapshot.Input != "" {
		b.logger.Info("Reading flashblocks from file",
			zap.String("path", b.cfg.Snapshot.Input),
		)
		return snapshot.Read(b.cfg.Snapshot.Input)
	}

	return b.subscriber.Gather(ctx, b.cfg.Gather.Duration)
}
