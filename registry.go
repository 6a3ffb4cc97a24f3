package sinklog

import (
	"path/filepath"
	"sync"
	"sync/atomic"
)

// registry maps each sink-owning level to a shared sink.
// Reads on the write path are lock-free, mutations serialize on mu.
type registry struct {
	mu     sync.Mutex
	sinks  [numSinkLevels]atomic.Pointer[Sink]
	stdout *Sink
	stderr *Sink
	env    sinkEnv
}

// newRegistry binds every level to its console default
func newRegistry(stdout, stderr *Sink, env sinkEnv) *registry {
	r := &registry{stdout: stdout, stderr: stderr, env: env}
	for lv := range numSinkLevels {
		r.sinks[lv].Store(r.consoleFor(Level(lv)))
	}
	return r
}

// consoleFor returns the default sink for a level
func (r *registry) consoleFor(level Level) *Sink {
	if level == LevelError {
		return r.stderr
	}
	return r.stdout
}

// sink resolves the sink currently bound to level
func (r *registry) sink(level Level) *Sink {
	return r.sinks[level].Load()
}

// bind assigns a file sink to one level, aliasing an existing sink for the same path
func (r *registry) bind(level Level, path string, rot Rotation) error {
	if level < LevelDebug || level >= LevelNone {
		return fmtErrorf("%w: cannot bind a log file to level %s", ErrInvalidLevel, level)
	}
	if path == "" {
		return fmtErrorf("%w: empty path", ErrFileOpen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current := r.sinks[level].Load(); current.isFile() {
		return fmtErrorf("%w: level %s is already bound to '%s'", ErrAlreadyBound, level, current.path)
	}

	if shared := r.findByPathLocked(path); shared != nil {
		r.sinks[level].Store(shared.acquire())
		return nil
	}

	s, err := openFileSink(path, rot, r.env)
	if err != nil {
		return err
	}
	r.sinks[level].Store(s)
	return nil
}

// bindAll assigns one new file sink to every level, requires no prior file binding
func (r *registry) bindAll(path string, rot Rotation) error {
	if path == "" {
		return fmtErrorf("%w: empty path", ErrFileOpen)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for lv := range numSinkLevels {
		if current := r.sinks[lv].Load(); current.isFile() {
			return fmtErrorf("%w: level %s is already bound to '%s'", ErrAlreadyBound, Level(lv), current.path)
		}
	}

	s, err := openFileSink(path, rot, r.env)
	if err != nil {
		return err
	}
	// openFileSink holds the first reference
	r.sinks[0].Store(s)
	for lv := 1; lv < numSinkLevels; lv++ {
		r.sinks[lv].Store(s.acquire())
	}
	return nil
}

// findByPathLocked returns the file sink already writing to path, if any
func (r *registry) findByPathLocked(path string) *Sink {
	want := canonicalPath(path)
	for lv := range numSinkLevels {
		s := r.sinks[lv].Load()
		if s.isFile() && canonicalPath(s.path) == want {
			return s
		}
	}
	return nil
}

// canonicalPath makes "./a.log" and "a.log" compare equal
func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// sync flushes every distinct file sink
func (r *registry) sync() error {
	var err error
	seen := make(map[*Sink]struct{}, numSinkLevels)
	for lv := range numSinkLevels {
		s := r.sinks[lv].Load()
		if _, ok := seen[s]; ok || !s.isFile() {
			continue
		}
		seen[s] = struct{}{}
		err = combineErrors(err, s.sync())
	}
	return err
}

// stats snapshots the binding of every level
func (r *registry) stats() []SinkStats {
	out := make([]SinkStats, 0, numSinkLevels)
	for lv := range numSinkLevels {
		out = append(out, r.sinks[lv].Load().stats(Level(lv)))
	}
	return out
}

// close releases all file bindings and restores console defaults
func (r *registry) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for lv := range numSinkLevels {
		s := r.sinks[lv].Load()
		if !s.isFile() {
			continue
		}
		r.sinks[lv].Store(r.consoleFor(Level(lv)))
		err = combineErrors(err, s.release())
	}
	return err
}
