package sinklog

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values
type Config struct {
	// Level control
	Level string `toml:"level"` // "debug", "info", "error" or "none"

	// File bindings, empty keeps the console default.
	// File binds every level to one shared file and excludes the per-level keys.
	File          string `toml:"file"`
	DebugFile     string `toml:"debug_file"`
	InfoFile      string `toml:"info_file"`
	ErrorFile     string `toml:"error_file"`
	ProfilingFile string `toml:"profiling_file"`

	// Rotation applied to every file binding
	Policy    string `toml:"policy"`      // "none", "size" or "daily"
	MaxFiles  int64  `toml:"max_files"`   // Active file plus numbered backups
	MaxSizeKB int64  `toml:"max_size_kb"` // Size policy threshold, 0 disables

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Report rotation and write failures
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:  "debug",
	Policy: "none",

	MaxFiles:  0,
	MaxSizeKB: 0,

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [log] table of a TOML file and
// returns a validated Config. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	return NewConfigFromLoader(loader, "log.")
}

// NewConfigFromLoader extracts a validated Config from an already loaded
// lixenwraith/config instance. Keys are read as prefix + toml tag, missing keys
// keep their default value.
func NewConfigFromLoader(loader *config.Config, prefix string) (*Config, error) {
	if loader == nil {
		return nil, fmtErrorf("config loader cannot be nil")
	}

	cfg := DefaultConfig()
	if err := extractConfig(loader, prefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion.
// Strings are parsed for numeric and boolean fields, as CLI arguments arrive unparsed.
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case string:
			intVal, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("expected int64, got %q", v)
			}
			field.SetInt(intVal)
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		switch v := value.(type) {
		case bool:
			field.SetBool(v)
		case string:
			boolVal, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("expected bool, got %q", v)
			}
			field.SetBool(boolVal)
		default:
			return fmt.Errorf("expected bool, got %T", value)
		}

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	if _, err := ParsePolicy(c.Policy); err != nil {
		return err
	}

	if c.MaxFiles < 0 || c.MaxSizeKB < 0 {
		return fmtErrorf("rotation limits cannot be negative")
	}

	// Cross-field validations
	if c.File != "" {
		for _, b := range c.levelFiles() {
			if b.path != "" {
				return fmtErrorf("file '%s' binds every level, %s_file must be empty", c.File, b.level)
			}
		}
	}

	return nil
}

// levelBinding pairs a level with its configured path
type levelBinding struct {
	level Level
	path  string
}

// levelFiles returns the per-level bindings in level order
func (c *Config) levelFiles() []levelBinding {
	return []levelBinding{
		{LevelDebug, c.DebugFile},
		{LevelInfo, c.InfoFile},
		{LevelError, c.ErrorFile},
		{LevelProfiling, c.ProfilingFile},
	}
}

// rotation converts the rotation keys, Validate must have passed
func (c *Config) rotation() Rotation {
	policy, _ := ParsePolicy(c.Policy)
	return Rotation{
		Policy:   policy,
		MaxFiles: int(c.MaxFiles),
		MaxSize:  c.MaxSizeKB * sizeMultiplier,
	}.normalize()
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
