package internal

import (
	"log"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLogLevel maps ERROR, WARN, INFO, DEBUG and TRACE to a level. Anything
// else is INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	}
	return LogLevelInfo
}

// verbosity maps a level onto logr V-levels: Info lines are V(0), debug
// lines V(1), trace lines V(2). Below INFO only errors get through.
func (l LogLevel) verbosity() int {
	switch l {
	case LogLevelDebug:
		return 1
	case LogLevelTrace:
		return 2
	}
	return 0
}

// NewLogger returns a logr.Logger that writes through the standard logger,
// one "[name] msg key=value" line per call.
func NewLogger(level LogLevel) logr.Logger {
	quiet := level < LogLevelInfo
	return funcr.New(func(prefix, args string) {
		if quiet && !strings.Contains(args, `"error"=`) {
			return
		}
		if prefix != "" {
			log.Printf("[%s] %s", prefix, args)
			return
		}
		log.Print(args)
	}, funcr.Options{Verbosity: level.verbosity()})
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() logr.Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}
