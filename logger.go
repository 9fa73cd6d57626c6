package pgmodel

import (
	"context"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	errors "golang.org/x/xerrors"
)

// LogLevel represents the pgmodel logging level. See LogLevel* constants for
// possible values.
type LogLevel int

// The values for log levels are chosen such that the zero value means that no
// log level was specified and we can default to LogLevelInfo.
const (
	LogLevelTrace = LogLevel(6)
	LogLevelDebug = LogLevel(5)
	LogLevelInfo  = LogLevel(4)
	LogLevelWarn  = LogLevel(3)
	LogLevelError = LogLevel(2)
	LogLevelNone  = LogLevel(1)
)

func (ll LogLevel) String() string {
	switch ll {
	case LogLevelTrace:
		return "trace"
	case LogLevelDebug:
		return "debug"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	case LogLevelNone:
		return "none"
	default:
		return fmt.Sprintf("invalid level %d", ll)
	}
}

// Logger is the interface used to get log output from pgmodel.
type Logger interface {
	// Log a message at the given level with data key/value pairs. data may be nil.
	Log(ctx context.Context, level LogLevel, msg string, data map[string]interface{})
}

// LoggerFunc is a wrapper around a function to satisfy the Logger interface.
type LoggerFunc func(ctx context.Context, level LogLevel, msg string, data map[string]interface{})

// Log delegates the logging request to the wrapped function.
func (f LoggerFunc) Log(ctx context.Context, level LogLevel, msg string, data map[string]interface{}) {
	f(ctx, level, msg, data)
}

// LogLevelFromString converts log level string to constant
//
// Valid levels:
//
//	trace
//	debug
//	info
//	warn
//	error
//	none
func LogLevelFromString(s string) (LogLevel, error) {
	switch s {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "none":
		return LogLevelNone, nil
	default:
		return 0, errors.Errorf("invalid log level %q", s)
	}
}

// logQueryArgs renders encoded parameters for logging. Long values are truncated.
func logQueryArgs(args [][]byte, formats []int16) []interface{} {
	logArgs := make([]interface{}, 0, len(args))

	for i, v := range args {
		var a interface{}
		switch {
		case v == nil:
			a = nil
		case formats[i] == 0 && utf8.Valid(v):
			s := string(v)
			if len(s) > 64 {
				l := 0
				for w := 0; l < 64; l += w {
					_, w = utf8.DecodeRuneInString(s[l:])
				}
				if len(s) > l {
					s = fmt.Sprintf("%s (truncated %d bytes)", s[:l], len(s)-l)
				}
			}
			a = s
		case len(v) < 64:
			a = hex.EncodeToString(v)
		default:
			a = fmt.Sprintf("%x (truncated %d bytes)", v[:64], len(v)-64)
		}
		logArgs = append(logArgs, a)
	}

	return logArgs
}
