//go:build sinklog_nodebug

package sinklog

const debugCompiled = false
