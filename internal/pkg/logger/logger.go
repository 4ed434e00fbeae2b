package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap.Logger and keeps the config it was built from
type Logger struct {
	*zap.Logger
	config *Config
}

// New creates a new logger instance with the given configuration
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger configuration: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), newSyncer(cfg), level)

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return &Logger{Logger: zap.New(core, opts...), config: cfg}, nil
}

// NewNop returns a logger that discards everything, used by tests
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), config: DefaultConfig()}
}

func newEncoder(format string) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// newSyncer picks the destinations. stdio transport mode must log to
// stderr or a file since stdout carries protocol messages.
func newSyncer(cfg *Config) zapcore.WriteSyncer {
	switch cfg.Output {
	case OutputStderr:
		return zapcore.Lock(os.Stderr)
	case OutputFile:
		return zapcore.AddSync(fileWriter(&cfg.File))
	case OutputBoth:
		return zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stdout), zapcore.AddSync(fileWriter(&cfg.File)))
	default:
		return zapcore.Lock(os.Stdout)
	}
}

// fileWriter creates a lumberjack writer with rotation
func fileWriter(cfg *FileConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// With creates a child logger with additional fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}

// Named creates a named child logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// Config returns the logger configuration
func (l *Logger) Config() *Config {
	return l.config
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitGlobal initializes the global logger
func InitGlobal(cfg *Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal replaces the global logger
func SetGlobal(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// L returns the global logger, building a default one on first use
func L() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger, _ = New(DefaultConfig())
	}
	return globalLogger
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync flushes the global logger
func Sync() error {
	return L().Sync()
}
