package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flashbots/flashblocks-ssz/config"
	"github.com/flashbots/flashblocks-ssz/logutils"
)

var (
	version = "development"
)

const (
	appName = "flashblocks-ssz"

	envPrefix = "FLASHBLOCKS_SSZ_"
)

func main() {
	cfg := config.New()

	flags := []cli.Flag{
		&cli.StringFlag{
			Destination: &cfg.Log.Level,
			EnvVars:     []string{envPrefix + "LOG_LEVEL"},
			Name:        "log-level",
			Usage:       "logging level",
			Value:       "info",
		},

		&cli.StringFlag{
			Destination: &cfg.Log.Mode,
			EnvVars:     []string{envPrefix + "LOG_MODE"},
			Name:        "log-mode",
			Usage:       "logging mode",
			Value:       "prod",
		},
	}

	commands := []*cli.Command{
		CommandBench(cfg),
	}

	app := &cli.App{
		Name:    appName,
		Usage:   "Compare byte lengths of flashblocks encoded as JSON and SSZ, raw and compressed",
		Version: version,

		Flags:          flags,
		Commands:       commands,
		DefaultCommand: commands[0].Name,

		Before: func(_ *cli.Context) error {
			l, err := logutils.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(l)
			return nil
		},

		After: func(_ *cli.Context) error {
			_ = zap.L().Sync()
			return nil
		},
	}

	defer func() {
		zap.L().Sync() //nolint:errcheck
	}()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed with error:\n\n%s\n\n", err.Error())
		os.Exit(1)
	}
}
