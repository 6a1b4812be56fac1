package xlog

// discardLogger is a no-op Logger, used when no logging is wanted (tests,
// benchmarks, or library embedders who route logs elsewhere).
type discardLogger struct{}

// Discard is the singleton no-op logger.
var Discard Logger = &discardLogger{}

func (discardLogger) Errorf(format string, args ...any) {}
func (discardLogger) Warnf(format string, args ...any)  {}
func (discardLogger) Infof(format string, args ...any)  {}
func (discardLogger) Debugf(format string, args ...any) {}
func (discardLogger) Fatalf(format string, args ...any) {}
