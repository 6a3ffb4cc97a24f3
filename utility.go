package sinklog

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel errors returned by configuration calls, match with errors.Is
var (
	ErrAlreadyBound = errors.New("log file already assigned")
	ErrFileOpen     = errors.New("log file cannot be opened")
	ErrInvalidLevel = errors.New("invalid log level")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "sinklog: ") {
		format = "sinklog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// ParseLevel converts a level string to a minimum level usable with SetLevel.
func ParseLevel(levelStr string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	case "none":
		return LevelNone, nil
	default:
		return 0, fmtErrorf("%w: '%s' (use debug, info, error, none)", ErrInvalidLevel, levelStr)
	}
}

// String returns the lower-case level name
func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	case LevelProfiling:
		return "profiling"
	case LevelNone:
		return "none"
	default:
		return fmt.Sprintf("level(%d)", int(lv))
	}
}

// ParsePolicy converts a policy string ("none", "size", "daily") to a Policy.
func ParsePolicy(policyStr string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(policyStr)) {
	case "", "none":
		return PolicyNone, nil
	case "size":
		return PolicySize, nil
	case "daily":
		return PolicyDaily, nil
	default:
		return 0, fmtErrorf("invalid policy: '%s' (use none, size, daily)", policyStr)
	}
}

// String returns the policy name as accepted by ParsePolicy
func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicySize:
		return "size"
	case PolicyDaily:
		return "daily"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// callerLocation returns "function (Line n)" for the frame skip levels above its caller.
func callerLocation(skip int) string {
	pc, _, line, ok := runtime.Caller(skip + 1) // +1 for callerLocation itself
	if !ok {
		return "(unknown)"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return fmt.Sprintf("(unknown) (Line %d)", line)
	}
	funcName := filepath.Base(fn.Name())
	if i := strings.Index(funcName, "."); i >= 0 {
		funcName = funcName[i+1:]
	}
	return fmt.Sprintf("%s (Line %d)", funcName, line)
}
