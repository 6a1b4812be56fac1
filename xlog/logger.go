// Package xlog provides the logging interface used across the skip-list
// index. It mirrors the five-level, namespaced logger convention used by
// RocksDB-family storage engines: Error, Warn, Info, Debug, Fatal.
//
// Fatalf behavior: logs at FATAL level and invokes the configured
// FatalHandler. The default handler is a no-op. Fatalf does not call
// os.Exit; a key-adapter contract violation is a programming error, not a
// reason to kill the process hosting the index.
//
// Log format: YYYY/MM/DD HH:MM:SS LEVEL [component] message
package xlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"sync/atomic"
)

// FatalHandler is invoked by Fatalf. It must be safe for concurrent use and
// must not itself call Fatalf.
type FatalHandler func(msg string)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Logger is the logging interface. User-supplied implementations must be
// safe for concurrent use: every skip-list operation may log from its own
// goroutine.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
	// Fatalf logs a programming-error-level condition (e.g. a key adapter
	// observed to violate strict total order) and invokes the FatalHandler.
	Fatalf(format string, args ...any)
}

// Namespace prefixes, one per component that logs.
const (
	NSSkiplist = "[skiplist] "
	NSIndex    = "[index] "
	NSReclaim  = "[reclaim] "
	NSFactory  = "[factory] "
)

// DefaultLogger writes to an io.Writer with level filtering.
type DefaultLogger struct {
	logger       *log.Logger
	level        Level
	fatalHandler atomic.Pointer[FatalHandler]
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{logger: log.New(w, "", log.LstdFlags), level: level}
}

// NewStderr creates a logger writing to stderr at the given level.
func NewStderr(level Level) *DefaultLogger {
	return New(os.Stderr, level)
}

// SetFatalHandler installs the handler called by Fatalf.
func (l *DefaultLogger) SetFatalHandler(h FatalHandler) {
	l.fatalHandler.Store(&h)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	if l.level >= LevelError {
		_ = l.logger.Output(2, "ERROR "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.level >= LevelWarn {
		_ = l.logger.Output(2, "WARN "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	if l.level >= LevelInfo {
		_ = l.logger.Output(2, "INFO "+fmt.Sprintf(format, args...))
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.level >= LevelDebug {
		_ = l.logger.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
	}
}

// Fatalf always logs, regardless of level, then invokes the FatalHandler.
func (l *DefaultLogger) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_ = l.logger.Output(2, "FATAL "+msg)
	if h := l.fatalHandler.Load(); h != nil {
		(*h)(msg)
	}
}

// IsNil reports whether l is nil or a typed-nil pointer wrapped in the
// interface (calling methods on either panics).
func IsNil(l Logger) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// OrDefault returns l if valid, else a WARN-level stderr logger.
func OrDefault(l Logger) Logger {
	if IsNil(l) {
		return NewStderr(LevelWarn)
	}
	return l
}
