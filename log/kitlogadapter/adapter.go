// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/jackc/pgmodel"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]interface{}) {
	logger := l.l
	for k, v := range data {
		logger = log.With(logger, k, v)
	}

	switch level {
	case pgmodel.LogLevelTrace:
		logger.Log("PGMODEL_LOG_LEVEL", level, "msg", msg)
	case pgmodel.LogLevelDebug:
		kitlevel.Debug(logger).Log("msg", msg)
	case pgmodel.LogLevelInfo:
		kitlevel.Info(logger).Log("msg", msg)
	case pgmodel.LogLevelWarn:
		kitlevel.Warn(logger).Log("msg", msg)
	case pgmodel.LogLevelError:
		kitlevel.Error(logger).Log("msg", msg)
	default:
		logger.Log("INVALID_PGMODEL_LOG_LEVEL", level, "error", msg)
	}
}
