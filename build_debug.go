//go:build !sinklog_nodebug

package sinklog

// debugCompiled is false when built with the sinklog_nodebug tag
const debugCompiled = true
