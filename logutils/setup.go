package logutils

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flashbots/flashblocks-ssz/config"
)

var (
	errLoggerFailedToBuild = errors.New("failed to build the logger")
	errLoggerInvalidLevel  = errors.New("invalid log-level")
	errLoggerInvalidMode   = errors.New("invalid log-mode")
)

// NewLogger builds the logger. Logs always go to stderr so that the report
// printed on stdout stays machine-readable.
func NewLogger(cfg *config.Log) (
	*zap.Logger, error,
) {
	lconfig, err := loggerConfig(cfg.Mode)
	if err != nil {
		return nil, err
	}

	logLevel, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w",
			errLoggerInvalidLevel, cfg.Level, err,
		)
	}
	lconfig.Level = logLevel
	lconfig.OutputPaths = []string{"stderr"}
	lconfig.ErrorOutputPaths = []string{"stderr"}

	l, err := lconfig.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w",
			errLoggerFailedToBuild, err,
		)
	}

	return l, nil
}

func loggerConfig(mode string) (zap.Config, error) {
	var lconfig zap.Config
	switch strings.ToLower(mode) {
	case "dev":
		lconfig = zap.NewDevelopmentConfig()
		lconfig.EncoderConfig.EncodeCaller = nil
		lconfig.DisableStacktrace = true
	case "prod":
		lconfig = zap.NewProductionConfig()
		lconfig.Sampling = nil
	default:
		return zap.Config{}, fmt.Errorf("%w: %s",
			errLoggerInvalidMode, mode,
		)
	}
	lconfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return lconfig, nil
}
