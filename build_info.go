//go:build !sinklog_noinfo

package sinklog

// infoCompiled is false when built with the sinklog_noinfo tag
const infoCompiled = true
