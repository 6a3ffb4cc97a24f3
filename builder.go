package sinklog

import (
	"io"
	"time"
)

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg  *Config
	opts []Option
	err  error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Logger instance with the specified configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger(b.opts...)

	// ApplyConfig handles validation and file binding
	if err := logger.ApplyConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Level sets the minimum enabled level.
func (b *Builder) Level(level Level) *Builder {
	if b.err != nil {
		return b
	}
	if level == LevelProfiling || level < LevelDebug || level > LevelNone {
		b.err = fmtErrorf("%w: %s cannot be used as minimum level", ErrInvalidLevel, level)
		return b
	}
	b.cfg.Level = level.String()
	return b
}

// LevelString sets the minimum enabled level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParseLevel(level); err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = level
	return b
}

// File binds every level to one shared file.
func (b *Builder) File(path string) *Builder {
	b.cfg.File = path
	return b
}

// LevelFile binds a single level to a file.
func (b *Builder) LevelFile(level Level, path string) *Builder {
	if b.err != nil {
		return b
	}
	switch level {
	case LevelDebug:
		b.cfg.DebugFile = path
	case LevelInfo:
		b.cfg.InfoFile = path
	case LevelError:
		b.cfg.ErrorFile = path
	case LevelProfiling:
		b.cfg.ProfilingFile = path
	default:
		b.err = fmtErrorf("%w: cannot bind a log file to level %s", ErrInvalidLevel, level)
	}
	return b
}

// Policy sets the rotation policy from a string.
func (b *Builder) Policy(policy string) *Builder {
	if b.err != nil {
		return b
	}
	if _, err := ParsePolicy(policy); err != nil {
		b.err = err
		return b
	}
	b.cfg.Policy = policy
	return b
}

// MaxFiles sets the retained file count for size rotation.
func (b *Builder) MaxFiles(n int64) *Builder {
	b.cfg.MaxFiles = n
	return b
}

// MaxSizeKB sets the size rotation threshold in KB.
func (b *Builder) MaxSizeKB(size int64) *Builder {
	b.cfg.MaxSizeKB = size
	return b
}

// MaxSizeMB sets the size rotation threshold in MB. Convenience.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeKB = size * 1000
	return b
}

// InternalErrorsToStderr reports rotation and write failures on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Stdout sets the console writer for debug, info and profiling output.
func (b *Builder) Stdout(w io.Writer) *Builder {
	b.opts = append(b.opts, WithStdout(w))
	return b
}

// Stderr sets the console writer for error output.
func (b *Builder) Stderr(w io.Writer) *Builder {
	b.opts = append(b.opts, WithStderr(w))
	return b
}

// Clock replaces time.Now, mainly for tests.
func (b *Builder) Clock(now func() time.Time) *Builder {
	b.opts = append(b.opts, WithClock(now))
	return b
}

// Example usage:
// logger, err := sinklog.NewBuilder().
//
//	LevelString("info").
//	LevelFile(sinklog.LevelInfo, "/var/log/app/info.log").
//	LevelFile(sinklog.LevelError, "/var/log/app/info.log").
//	Policy("size").
//	MaxFiles(5).
//	MaxSizeMB(10).
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown()
//	 logger.Info("Logger initialized successfully")
//
// }
