package sinklog

import (
	"time"
)

// Level identifies a log stream. Gated levels are ordered by severity.
type Level int

// Log level constants
const (
	LevelDebug Level = iota
	LevelInfo
	LevelError     // Routed to stderr by default
	LevelProfiling // Timer output, never gated by SetLevel
	LevelNone      // Minimum level only, disables debug/info/error
)

// numSinkLevels is the number of levels that own a sink binding
const numSinkLevels = int(LevelNone)

// Policy selects how a file sink is rotated
type Policy int

// Rotation policies
const (
	PolicyNone Policy = iota
	PolicySize
	PolicyDaily
)

// Line layout
const (
	timestampLayout = "2006-01-02 15:04:05.000"
	dateLayout      = "20060102"
)

// Per-level header tags placed between timestamp and message
var levelHeaders = [numSinkLevels]string{
	LevelDebug:     "DEBUG: ",
	LevelInfo:      "INFO: ",
	LevelError:     "*** ERROR! ",
	LevelProfiling: "PROFILING: ",
}

// File sinks
const (
	logFileMode = 0644
	// Lower bound for max retained files when size rotation is active
	minSizeRotationFiles = 2
	// Size multiplier for KB
	sizeMultiplier = 1000
)

// Timers
const (
	// Minimum wait between daily rotation checks, guards against clock skew spins
	minWaitTime = 10 * time.Millisecond
)
