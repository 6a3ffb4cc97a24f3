package sinklog

import (
	"sync/atomic"
)

// numGatedLevels covers debug, info and error
const numGatedLevels = int(LevelError) + 1

// gate is the per-level dispatch slot swapped by SetLevel. A closed gate
// discards calls before any formatting happens.
type gate struct {
	open   bool
	log    func(l *Logger, level Level, args []any)
	logf   func(l *Logger, level Level, format string, args []any)
	stream func(l *Logger, level Level) *Entry
}

var (
	openGate = &gate{
		open:   true,
		log:    (*Logger).writeArgs,
		logf:   (*Logger).writef,
		stream: (*Logger).openEntry,
	}
	closedGate = &gate{
		log:    func(*Logger, Level, []any) {},
		logf:   func(*Logger, Level, string, []any) {},
		stream: func(*Logger, Level) *Entry { return &Entry{} },
	}
)

// selector holds one atomically swapped gate per gated level
type selector struct {
	gates [numGatedLevels]atomic.Pointer[gate]
}

// newSelector starts with every level enabled
func newSelector() *selector {
	s := &selector{}
	s.set(LevelDebug)
	return s
}

// set opens every gated level at or above min and closes the rest
func (s *selector) set(min Level) {
	for lv := range numGatedLevels {
		if Level(lv) >= min {
			s.gates[lv].Store(openGate)
		} else {
			s.gates[lv].Store(closedGate)
		}
	}
}

// gate returns the current slot for a gated level
func (s *selector) gate(level Level) *gate {
	return s.gates[level].Load()
}

// enabled reports whether calls at level currently produce output
func (s *selector) enabled(level Level) bool {
	switch {
	case level == LevelProfiling:
		return profilingCompiled
	case level < LevelDebug || level > LevelError:
		return false
	default:
		return levelCompiled(level) && s.gate(level).open
	}
}

// levelCompiled reports whether a level survived the build-time switches
func levelCompiled(level Level) bool {
	switch level {
	case LevelDebug:
		return debugCompiled
	case LevelInfo:
		return infoCompiled
	case LevelError:
		return errorCompiled
	case LevelProfiling:
		return profilingCompiled
	}
	return false
}
