package logger

import (
	"strings"
	"sync"
)

// Log levels accepted in config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. Only the first call's level is used.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(normalizeLevel(level))
	})
	return globalLogger
}

// Named returns a child logger tagged with component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
