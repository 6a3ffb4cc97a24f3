package sinklog

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// sinkEnv carries logger-wide collaborators into each sink
type sinkEnv struct {
	now         func() time.Time
	fallback    io.Writer // Used when a rotated file cannot be reopened
	internalLog func(format string, args ...any)
}

// Sink owns one output destination and the lock serializing writes and rotation.
// A console sink has an empty path and is never rotated or closed.
type Sink struct {
	mu       sync.Mutex
	w        io.Writer
	file     *os.File // nil for console sinks, and for file sinks in fallback mode
	path     string
	refDate  string // YYYYMMDD, compared against today for daily rotation
	rotation Rotation
	closed   bool
	env      sinkEnv

	refs atomic.Int32

	// Daily rotation supervision
	stopDaily context.CancelFunc
	dailyDone chan struct{}

	// Counters
	rotations      atomic.Uint64
	rotationErrors atomic.Uint64
	writeErrors    atomic.Uint64
}

// newConsoleSink wraps a process-lifetime writer such as os.Stdout
func newConsoleSink(w io.Writer, env sinkEnv) *Sink {
	s := &Sink{w: w, env: env}
	s.refs.Store(1)
	return s
}

// openFileSink opens path in append mode and, for daily rotation, starts the
// supervising rotation goroutine. The returned sink holds one reference.
func openFileSink(path string, rot Rotation, env sinkEnv) (*Sink, error) {
	rot = rot.normalize()

	// Last write date stands in for the creation day of a pre-existing file
	ref := env.now()
	if info, err := os.Stat(path); err == nil {
		ref = info.ModTime()
	}

	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}

	s := &Sink{
		w:        file,
		file:     file,
		path:     path,
		refDate:  dateOf(ref),
		rotation: rot,
		env:      env,
	}
	s.refs.Store(1)

	if rot.Policy == PolicyDaily {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopDaily = cancel
		s.dailyDone = make(chan struct{})
		go s.runDailyRotation(ctx)
	}

	return s, nil
}

// openLogFile opens or creates a log file for appending
func openLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return nil, fmtErrorf("%w: '%s': %w", ErrFileOpen, path, err)
	}
	return file, nil
}

// Path returns the backing file path, empty for console sinks
func (s *Sink) Path() string {
	return s.path
}

// isFile reports whether the sink is file-bound
func (s *Sink) isFile() bool {
	return s.path != ""
}

// acquire adds a reference held by a level binding
func (s *Sink) acquire() *Sink {
	s.refs.Add(1)
	return s
}

// release drops one reference, the last release of a file sink closes it
func (s *Sink) release() error {
	if s.refs.Add(-1) > 0 || !s.isFile() {
		return nil
	}
	return s.close()
}

// close stops daily rotation and closes the file, later writes are discarded
func (s *Sink) close() error {
	if s.stopDaily != nil {
		s.stopDaily()
		<-s.dailyDone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.w = io.Discard

	if s.file == nil {
		return nil
	}

	var err error
	if errSync := s.file.Sync(); errSync != nil {
		err = combineErrors(err, fmtErrorf("failed to sync log file '%s': %w", s.path, errSync))
	}
	if errClose := s.file.Close(); errClose != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", s.path, errClose))
	}
	s.file = nil
	return err
}

// sync flushes a file sink to disk
func (s *Sink) sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.path, err)
	}
	return nil
}

// writeLine appends one complete line under the sink lock
func (s *Sink) writeLine(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prepareWriteLocked()
	s.writeLocked(line)
}

// lockForEntry acquires the lock for a streamed entry and writes its prefix.
// The caller must release with unlockEntry.
func (s *Sink) lockForEntry(prefix []byte) {
	s.mu.Lock()
	s.prepareWriteLocked()
	s.writeLocked(prefix)
}

// unlockEntry terminates a streamed line and releases the lock
func (s *Sink) unlockEntry() {
	s.writeLocked(lineEnd)
	s.mu.Unlock()
}

// prepareWriteLocked recovers from fallback mode and runs size rotation
func (s *Sink) prepareWriteLocked() {
	if !s.isFile() || s.closed {
		return
	}
	if s.file == nil && !s.reopenLocked() {
		return
	}
	if s.rotation.sizeEnabled() {
		s.rotateBySizeLocked()
	}
}

// writeLocked writes p, failures are counted and reported but never returned
func (s *Sink) writeLocked(p []byte) {
	if _, err := s.w.Write(p); err != nil {
		s.writeErrors.Add(1)
		s.env.internalLog("failed to write to log sink '%s': %v\n", s.displayName(), err)
	}
}

// displayName identifies the sink in diagnostics
func (s *Sink) displayName() string {
	if s.isFile() {
		return s.path
	}
	return "console"
}

// SinkStats is a point-in-time snapshot of one level binding
type SinkStats struct {
	Level          Level
	Path           string // Empty for console sinks
	Policy         Policy
	Rotations      uint64
	RotationErrors uint64
	WriteErrors    uint64
}

// stats returns the sink counters for the given level binding
func (s *Sink) stats(level Level) SinkStats {
	return SinkStats{
		Level:          level,
		Path:           s.path,
		Policy:         s.rotation.Policy,
		Rotations:      s.rotations.Load(),
		RotationErrors: s.rotationErrors.Load(),
		WriteErrors:    s.writeErrors.Load(),
	}
}
