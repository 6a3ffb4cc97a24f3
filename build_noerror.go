//go:build sinklog_noerror

package sinklog

const errorCompiled = false
