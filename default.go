package sinklog

import (
	"io"
	"sync/atomic"
	"time"
)

// Global instance for package-level functions
var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger())
}

// Default returns the logger used by the package-level functions
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the logger used by the package-level functions.
// The previous logger is returned and left open.
func SetDefault(l *Logger) *Logger {
	if l == nil {
		return defaultLogger.Load()
	}
	return defaultLogger.Swap(l)
}

// Default package-level functions that delegate to the default logger

// SetLevel sets the minimum enabled level of the default logger
func SetLevel(min Level) error {
	return Default().SetLevel(min)
}

// SetLogFile binds one level of the default logger to a file
func SetLogFile(level Level, path string, rot Rotation) error {
	return Default().SetLogFile(level, path, rot)
}

// SetLogFileAll binds every level of the default logger to one file
func SetLogFileAll(path string, rot Rotation) error {
	return Default().SetLogFileAll(path, rot)
}

// ApplyOverride applies "key=value" overrides to the default logger
func ApplyOverride(overrides ...string) error {
	return Default().ApplyOverride(overrides...)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	Default().Debug(args...)
}

// Info logs a message at info level
func Info(args ...any) {
	Default().Info(args...)
}

// Error logs a message at error level
func Error(args ...any) {
	Default().Error(args...)
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...any) {
	Default().Debugf(format, args...)
}

// Infof logs a formatted message at info level
func Infof(format string, args ...any) {
	Default().Infof(format, args...)
}

// Errorf logs a formatted message at error level
func Errorf(format string, args ...any) {
	Default().Errorf(format, args...)
}

// Log writes msg at the given level
func Log(level Level, msg string) {
	Default().Log(level, msg)
}

// Stream starts a streamed line on the default logger
func Stream(level Level) *Entry {
	return Default().Stream(level)
}

// WithStream runs fn with a streamed line on the default logger
func WithStream(level Level, fn func(w io.Writer)) {
	Default().WithStream(level, fn)
}

// StartTimer pushes a profiling timer on the default logger
func StartTimer(location string) {
	if !profilingCompiled {
		return
	}
	Default().startTimer(location)
}

// StartTimerHere pushes a profiling timer located at the caller
func StartTimerHere() {
	if !profilingCompiled {
		return
	}
	Default().startTimer(callerLocation(1))
}

// StopTimer pops the innermost profiling timer of the default logger
func StopTimer(unit time.Duration, location string) {
	if !profilingCompiled {
		return
	}
	Default().stopTimer(unit, location)
}

// StopTimerHere pops the innermost profiling timer, located at the caller
func StopTimerHere(unit time.Duration) {
	if !profilingCompiled {
		return
	}
	Default().stopTimer(unit, callerLocation(1))
}

// Flush syncs the default logger's files to disk
func Flush() error {
	return Default().Flush()
}

// Shutdown closes the default logger's files
func Shutdown() error {
	return Default().Shutdown()
}
