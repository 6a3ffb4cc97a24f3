package sinklog

import (
	"fmt"
	"io"
)

// Entry composes one line from several writes. It holds the sink lock from
// creation until Close, so concurrent entries on the same sink never interleave.
// An Entry must be closed by the goroutine that created it.
// The zero Entry discards everything, it is returned for disabled levels.
type Entry struct {
	sink   *Sink
	closed bool
}

// openEntry locks the level's sink and writes the timestamp and header
func (l *Logger) openEntry(level Level) *Entry {
	s := l.registry.Load().sink(level)

	lb := getLineBuffer()
	lb.buf = appendPrefix(lb.buf, l.now(), level)
	s.lockForEntry(lb.buf)
	putLineBuffer(lb)

	return &Entry{sink: s}
}

// Write appends raw bytes to the line. Sink failures are counted, never returned.
func (e *Entry) Write(p []byte) (int, error) {
	if e.sink == nil || e.closed {
		return len(p), nil
	}
	e.sink.writeLocked(p)
	return len(p), nil
}

// Print appends args separated by single spaces
func (e *Entry) Print(args ...any) *Entry {
	if e.sink == nil || e.closed {
		return e
	}
	lb := getLineBuffer()
	lb.buf = appendArgs(lb.buf, args)
	e.sink.writeLocked(lb.buf)
	putLineBuffer(lb)
	return e
}

// Printf appends a formatted string
func (e *Entry) Printf(format string, args ...any) *Entry {
	if e.sink == nil || e.closed {
		return e
	}
	e.sink.writeLocked([]byte(fmt.Sprintf(format, args...)))
	return e
}

// Close terminates the line and releases the sink. Safe to call more than once.
func (e *Entry) Close() error {
	if e.sink == nil || e.closed {
		return nil
	}
	e.closed = true
	e.sink.unlockEntry()
	return nil
}

// Enabled reports whether the entry writes anywhere
func (e *Entry) Enabled() bool {
	return e.sink != nil
}

// withEntry runs fn against an entry and always releases it
func withEntry(e *Entry, fn func(w io.Writer)) {
	defer e.Close()
	fn(e)
}
