// Package logger provides a centralized leveled logger with configurable
// verbosity, backed by zap.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("serving on %s", addr)
//	logger.Debugf("iv=%f iterations=%d", sol.Sigma, sol.Iterations)
package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var (
	current atomic.Int32
	sugar   atomic.Pointer[zap.SugaredLogger]
)

func init() {
	current.Store(int32(Info))
	sugar.Store(newSugar(zapcore.Lock(os.Stderr)))
}

// newSugar builds a console logger writing to w. Level filtering is done
// by this package, so zap itself lets everything through.
func newSugar(w zapcore.WriteSyncer) *zap.SugaredLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), w, zapcore.DebugLevel)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
}

// SetVerbosity sets the global logging verbosity.
// Typically called once during application startup.
func SetVerbosity(v int) {
	current.Store(int32(v))
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	return Level(current.Load())
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w zapcore.WriteSyncer) {
	sugar.Store(newSugar(w))
}

// Sync flushes buffered log entries.
func Sync() {
	_ = sugar.Load().Sync()
}

func logf(l Level, format string, args ...any) {
	if Verbosity() < l {
		return
	}
	s := sugar.Load()
	switch l {
	case Error:
		s.Errorf(format, args...)
	case Info:
		s.Infof(format, args...)
	case Trace:
		s.Debugf("[trace] "+format, args...)
	default:
		s.Debugf(format, args...)
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, format, args...)
}

// Tracef logs very detailed execution traces.
func Tracef(format string, args ...any) {
	logf(Trace, format, args...)
}
