package main

import (
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/flashbots/flashblocks-ssz/bench"
	"github.com/flashbots/flashblocks-ssz/config"
)

const (
	categoryGather   = "gather"
	categoryMetrics  = "metrics"
	categorySnapshot = "snapshot"
)

func CommandBench(cfg *config.Config) *cli.Command {
	gatherFlags := []cli.Flag{
		&cli.DurationFlag{
			Aliases:     []string{"d"},
			Category:    strings.ToUpper(categoryGather),
			Destination: &cfg.Gather.Duration,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryGather) + "_DURATION"},
			Name:        "duration",
			Usage:       "`duration` to gather flashblocks for",
			Value:       60 * time.Second,
		},

		&cli.DurationFlag{
			Category:    strings.ToUpper(categoryGather),
			Destination: &cfg.Gather.HandshakeTimeout,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryGather) + "_HANDSHAKE_TIMEOUT"},
			Name:        categoryGather + "-handshake-timeout",
			Usage:       "`timeout` for the websocket handshake",
			Value:       5 * time.Second,
		},

		&cli.IntFlag{
			Category:    strings.ToUpper(categoryGather),
			Destination: &cfg.Gather.ReadBufferSize,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryGather) + "_READ_BUFFER_SIZE"},
			Name:        categoryGather + "-read-buffer-size",
			Usage:       "websocket read buffer size in `megabytes`",
			Value:       16,
		},

		&cli.DurationFlag{
			Category:    strings.ToUpper(categoryGather),
			Destination: &cfg.Gather.ReadTimeout,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryGather) + "_READ_TIMEOUT"},
			Name:        categoryGather + "-read-timeout",
			Usage:       "max `duration` to wait for the next message (0 to wait indefinitely)",
			Value:       30 * time.Second,
		},

		&cli.StringFlag{
			Category:    strings.ToUpper(categoryGather),
			Destination: &cfg.Gather.URL,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryGather) + "_URL"},
			Name:        "url",
			Usage:       "websocket `url` of the flashblocks stream",
			Value:       "wss://sepolia.flashblocks.base.org/ws",
		},
	}

	snapshotFlags := []cli.Flag{
		&cli.StringFlag{
			Aliases:     []string{"f"},
			Category:    strings.ToUpper(categorySnapshot),
			Destination: &cfg.Snapshot.Input,
			EnvVars:     []string{envPrefix + strings.ToUpper(categorySnapshot) + "_FILE"},
			Name:        "file",
			Usage:       "read flashblocks from json `file` instead of gathering them",
		},

		&cli.StringFlag{
			Aliases:     []string{"w"},
			Category:    strings.ToUpper(categorySnapshot),
			Destination: &cfg.Snapshot.Output,
			EnvVars:     []string{envPrefix + strings.ToUpper(categorySnapshot) + "_WRITE"},
			Name:        "write",
			Usage:       "write gathered flashblocks to json `file`",
		},
	}

	metricsFlags := []cli.Flag{
		&cli.StringFlag{
			Category:    strings.ToUpper(categoryMetrics),
			Destination: &cfg.Metrics.ListenAddress,
			EnvVars:     []string{envPrefix + strings.ToUpper(categoryMetrics) + "_LISTEN_ADDRESS"},
			Name:        categoryMetrics + "-listen-address",
			Usage:       "`host:port` for the metrics server (disabled when empty)",
		},
	}

	flags := slices.Concat(
		gatherFlags,
		snapshotFlags,
		metricsFlags,
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "gather (or load) flashblocks and report their encoded sizes",
		Flags: flags,

		Before: func(_ *cli.Context) error {
			return cfg.Validate()
		},

		Action: func(clictx *cli.Context) error {
			b, err := bench.New(cfg)
			if err != nil {
				return err
			}
			return b.Run(clictx.Context)
		},
	}
}
