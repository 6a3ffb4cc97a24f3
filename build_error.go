//go:build !sinklog_noerror

package sinklog

// errorCompiled is false when built with the sinklog_noerror tag
const errorCompiled = true
