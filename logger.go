package sinklog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the composition root: it owns the level gates, the sink registry
// and the timer stack. Loggers are independent of each other.
type Logger struct {
	currentConfig atomic.Value // stores *Config
	registry      atomic.Pointer[registry]
	selector      *selector
	timers        timerStack
	initMu        sync.Mutex
	shutdown      atomic.Bool

	now            func() time.Time
	stdout         *Sink     // Process-lifetime console sinks shared by every registry
	stderr         *Sink     //
	errOut         io.Writer // Internal diagnostics, written without any sink lock
	internalErrors atomic.Bool
}

// options collects NewLogger settings
type options struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

// Option customizes a Logger at construction
type Option func(*options)

// WithStdout sets the console writer for debug, info and profiling output
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.stdout = w
		}
	}
}

// WithStderr sets the console writer for error output and rotation fallback
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.stderr = w
		}
	}
}

// WithClock replaces time.Now for timestamps and day boundaries
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewLogger creates a Logger with every level enabled and routed to the console
func NewLogger(opts ...Option) *Logger {
	o := options{stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Logger{
		selector: newSelector(),
		now:      o.now,
		errOut:   o.stderr,
	}

	// Console sinks are never reopened, so their fallback stays unused
	l.stdout = newConsoleSink(o.stdout, l.sinkEnv())
	l.stderr = newConsoleSink(o.stderr, l.sinkEnv())

	l.registry.Store(newRegistry(l.stdout, l.stderr, l.sinkEnv()))
	l.currentConfig.Store(DefaultConfig())

	return l
}

// sinkEnv returns the collaborators handed to new sinks
func (l *Logger) sinkEnv() sinkEnv {
	return sinkEnv{
		now:         l.now,
		fallback:    lockedWriter{l.stderr},
		internalLog: l.internalLog,
	}
}

// ApplyConfig applies a validated configuration to the logger.
// Level and file bindings are replaced as a whole, bindings made with SetLogFile
// are dropped. On error the logger is left unchanged.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.shutdown.Load() {
		return fmtErrorf("logger already shut down")
	}

	return l.applyConfig(cfg.Clone())
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held
func (l *Logger) applyConfig(cfg *Config) error {
	minLevel, _ := ParseLevel(cfg.Level)
	rot := cfg.rotation()

	// Build the new bindings aside so a failure leaves the current ones active
	reg := newRegistry(l.stdout, l.stderr, l.sinkEnv())
	if cfg.File != "" {
		if err := reg.bindAll(cfg.File, rot); err != nil {
			return err
		}
	}
	for _, b := range cfg.levelFiles() {
		if b.path == "" {
			continue
		}
		if err := reg.bind(b.level, b.path, rot); err != nil {
			if closeErr := reg.close(); closeErr != nil {
				l.internalLog("failed to close partial bindings: %v\n", closeErr)
			}
			return err
		}
	}

	l.internalErrors.Store(cfg.InternalErrorsToStderr)
	l.currentConfig.Store(cfg)
	old := l.registry.Swap(reg)
	l.selector.set(minLevel)

	if err := old.close(); err != nil {
		return fmtErrorf("failed to close previous log files: %w", err)
	}
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// SetLevel enables debug, info and error calls at or above min and disables
// the rest. LevelNone disables all three. Profiling output is not affected.
func (l *Logger) SetLevel(min Level) error {
	if min < LevelDebug || min > LevelNone || min == LevelProfiling {
		return fmtErrorf("%w: %s cannot be used as minimum level", ErrInvalidLevel, min)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	l.selector.set(min)

	cfg := l.GetConfig()
	cfg.Level = min.String()
	l.currentConfig.Store(cfg)
	return nil
}

// Enabled reports whether calls at level currently produce output
func (l *Logger) Enabled(level Level) bool {
	return l.selector.enabled(level)
}

// SetLogFile binds one level to a file. A path already used by another level
// shares that level's sink, including its rotation. Fails with ErrAlreadyBound
// if the level already writes to a file, and with ErrFileOpen if the file
// cannot be opened. On error the previous binding stays active.
func (l *Logger) SetLogFile(level Level, path string, rot Rotation) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.shutdown.Load() {
		return fmtErrorf("logger already shut down")
	}
	return l.registry.Load().bind(level, path, rot)
}

// SetLogFileAll binds every level to one shared file. Fails with
// ErrAlreadyBound if any level already writes to a file.
func (l *Logger) SetLogFileAll(path string, rot Rotation) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.shutdown.Load() {
		return fmtErrorf("logger already shut down")
	}
	return l.registry.Load().bindAll(path, rot)
}

// Debug logs args at debug level, separated by spaces
func (l *Logger) Debug(args ...any) {
	if !debugCompiled {
		return
	}
	l.selector.gate(LevelDebug).log(l, LevelDebug, args)
}

// Info logs args at info level, separated by spaces
func (l *Logger) Info(args ...any) {
	if !infoCompiled {
		return
	}
	l.selector.gate(LevelInfo).log(l, LevelInfo, args)
}

// Error logs args at error level, separated by spaces
func (l *Logger) Error(args ...any) {
	if !errorCompiled {
		return
	}
	l.selector.gate(LevelError).log(l, LevelError, args)
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...any) {
	if !debugCompiled {
		return
	}
	l.selector.gate(LevelDebug).logf(l, LevelDebug, format, args)
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...any) {
	if !infoCompiled {
		return
	}
	l.selector.gate(LevelInfo).logf(l, LevelInfo, format, args)
}

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...any) {
	if !errorCompiled {
		return
	}
	l.selector.gate(LevelError).logf(l, LevelError, format, args)
}

// Log writes msg at the given level. Profiling is always written, LevelNone never.
func (l *Logger) Log(level Level, msg string) {
	switch {
	case level == LevelProfiling:
		if profilingCompiled {
			l.writeLine(LevelProfiling, msg)
		}
	case level >= LevelDebug && level <= LevelError:
		if levelCompiled(level) {
			l.selector.gate(level).log(l, level, []any{msg})
		}
	}
}

// Stream starts a line at level and returns it for the caller to append to.
// The level's sink stays locked until the Entry is closed.
//
//	e := logger.Stream(sinklog.LevelInfo)
//	fmt.Fprint(e, "processed ", n, " items")
//	e.Close()
func (l *Logger) Stream(level Level) *Entry {
	switch {
	case level == LevelProfiling:
		if profilingCompiled {
			return l.openEntry(level)
		}
	case level >= LevelDebug && level <= LevelError:
		if levelCompiled(level) {
			return l.selector.gate(level).stream(l, level)
		}
	}
	return &Entry{}
}

// WithStream runs fn with a streamed line and closes it afterwards, even on panic
func (l *Logger) WithStream(level Level, fn func(w io.Writer)) {
	withEntry(l.Stream(level), fn)
}

// StartTimer pushes a profiling timer and reports it with the given location
func (l *Logger) StartTimer(location string) {
	if !profilingCompiled {
		return
	}
	l.startTimer(location)
}

// StartTimerHere is StartTimer with the caller's function and line as location
func (l *Logger) StartTimerHere() {
	if !profilingCompiled {
		return
	}
	l.startTimer(callerLocation(1))
}

// StopTimer pops the innermost timer and reports its duration in whole units
// of unit, e.g. time.Millisecond. Without a running timer it reports
// "Timer not started!" and does nothing else.
func (l *Logger) StopTimer(unit time.Duration, location string) {
	if !profilingCompiled {
		return
	}
	l.stopTimer(unit, location)
}

// StopTimerHere is StopTimer with the caller's function and line as location
func (l *Logger) StopTimerHere(unit time.Duration) {
	if !profilingCompiled {
		return
	}
	l.stopTimer(unit, callerLocation(1))
}

// Flush syncs every file sink to disk
func (l *Logger) Flush() error {
	return l.registry.Load().sync()
}

// Stats returns a snapshot of the sink bound to each level
func (l *Logger) Stats() []SinkStats {
	return l.registry.Load().stats()
}

// Shutdown closes all log files and stops daily rotation. Later calls are routed
// to the console defaults and file binding is refused. Safe to call more than once.
func (l *Logger) Shutdown() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if !l.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	return l.registry.Load().close()
}

// writeArgs formats args into one line and appends it to the level's sink
func (l *Logger) writeArgs(level Level, args []any) {
	lb := getLineBuffer()
	lb.buf = appendPrefix(lb.buf, l.now(), level)
	lb.buf = appendArgs(lb.buf, args)
	lb.buf = append(lb.buf, lineEnd...)
	l.registry.Load().sink(level).writeLine(lb.buf)
	putLineBuffer(lb)
}

// writef formats with fmt.Sprintf and appends the line
func (l *Logger) writef(level Level, format string, args []any) {
	l.writeLine(level, fmt.Sprintf(format, args...))
}

// writeLine appends msg as one line to the level's sink
func (l *Logger) writeLine(level Level, msg string) {
	lb := getLineBuffer()
	lb.buf = appendLine(lb.buf, l.now(), level, msg)
	l.registry.Load().sink(level).writeLine(lb.buf)
	putLineBuffer(lb)
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	if !l.internalErrors.Load() {
		return
	}

	// Ensure consistent prefix
	if !strings.HasPrefix(format, "sinklog: ") {
		format = "sinklog: " + format
	}

	fmt.Fprintf(l.errOut, format, args...)
}

// lockedWriter writes through a console sink's lock, used as rotation fallback
type lockedWriter struct {
	s *Sink
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	return w.s.w.Write(p)
}
