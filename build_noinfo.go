//go:build sinklog_noinfo

package sinklog

const infoCompiled = false
