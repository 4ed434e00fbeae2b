package logger

import (
	"errors"
	"strings"
)

// Output targets.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
	OutputBoth   = "both"
)

// Config defines the logger configuration
type Config struct {
	Level            string     `mapstructure:"level"`  // debug, info, warn, error
	Format           string     `mapstructure:"format"` // json, console
	Output           string     `mapstructure:"output"` // stdout, stderr, file, both
	File             FileConfig `mapstructure:"file"`
	EnableCaller     bool       `mapstructure:"enable_caller"`
	EnableStacktrace bool       `mapstructure:"enable_stacktrace"`
}

// FileConfig defines rotated file output
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxAge     int    `mapstructure:"max_age"`  // days
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:            "info",
		Format:           "json",
		Output:           OutputStdout,
		EnableCaller:     true,
		EnableStacktrace: true,
		File: FileConfig{
			Filename:   "logs/websearch-mcp.log",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
	"dpanic": true, "panic": true, "fatal": true,
}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	if !validLevels[strings.ToLower(c.Level)] {
		return errors.New("invalid log level, must be one of: debug, info, warn, error, dpanic, panic, fatal")
	}

	switch c.Format {
	case "json", "console":
	default:
		return errors.New("invalid log format, must be 'json' or 'console'")
	}

	switch c.Output {
	case OutputStdout, OutputStderr:
		return nil
	case OutputFile, OutputBoth:
	default:
		return errors.New("invalid log output, must be 'stdout', 'stderr', 'file' or 'both'")
	}

	if c.File.Filename == "" {
		return errors.New("log file filename is required when output is 'file' or 'both'")
	}
	if c.File.MaxSize <= 0 {
		return errors.New("log file max_size must be greater than 0")
	}
	if c.File.MaxAge <= 0 {
		return errors.New("log file max_age must be greater than 0")
	}
	if c.File.MaxBackups < 0 {
		return errors.New("log file max_backups must be greater than or equal to 0")
	}
	return nil
}

// Option modifies a logger configuration
type Option func(*Config)

// WithLevel sets the log level
func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

// WithFormat sets the log format
func WithFormat(format string) Option {
	return func(c *Config) { c.Format = format }
}

// WithOutput sets the log output
func WithOutput(output string) Option {
	return func(c *Config) { c.Output = output }
}

// NewWithOptions creates a logger from DefaultConfig modified by opts
func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}
