//go:build !sinklog_noprofiling

package sinklog

// profilingCompiled is false when built with the sinklog_noprofiling tag
const profilingCompiled = true
