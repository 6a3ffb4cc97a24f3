//go:build sinklog_noprofiling

package sinklog

const profilingCompiled = false
