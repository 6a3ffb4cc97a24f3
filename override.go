package sinklog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the logger's current configuration.
// Each override should be in the format "key=value".
// The configuration is cloned before modification, the logger is unchanged on error.
//
// Example:
//
//	logger := sinklog.NewLogger()
//	err := logger.ApplyOverride(
//	    "level=info",
//	    "info_file=/var/log/app/info.log",
//	    "policy=size",
//	    "max_size_kb=512",
//	)
func (l *Logger) ApplyOverride(overrides ...string) error {
	cfg := l.GetConfig()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("sinklog: multiple configuration errors:")
	for i, err := range errors {
		// Remove prefix from individual errors to avoid duplication
		errMsg := strings.TrimPrefix(err.Error(), "sinklog: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "level":
		if _, err := ParseLevel(value); err != nil {
			return fmtErrorf("invalid level value '%s': %w", value, err)
		}
		cfg.Level = value

	// File bindings
	case "file":
		cfg.File = value
	case "debug_file":
		cfg.DebugFile = value
	case "info_file":
		cfg.InfoFile = value
	case "error_file":
		cfg.ErrorFile = value
	case "profiling_file":
		cfg.ProfilingFile = value

	// Rotation
	case "policy":
		if _, err := ParsePolicy(value); err != nil {
			return err
		}
		cfg.Policy = value
	case "max_files":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_files '%s': %w", value, err)
		}
		cfg.MaxFiles = intVal
	case "max_size_kb":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_size_kb '%s': %w", value, err)
		}
		cfg.MaxSizeKB = intVal

	// Internal error handling
	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
