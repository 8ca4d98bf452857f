package logutils

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type fasthttpLogger struct {
	logger *zap.SugaredLogger
}

// FasthttpLogger routes fasthttp's internal messages to debug level.
func FasthttpLogger(logger *zap.Logger) fasthttp.Logger {
	return &fasthttpLogger{
		logger: logger.Sugar(),
	}
}

func (l *fasthttpLogger) Printf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}
