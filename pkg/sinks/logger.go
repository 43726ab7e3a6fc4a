package sinks

import "github.com/samvad-hq/webresolver-client/internal/logger"

// Logger is the structured logger sinks report delivery through.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
