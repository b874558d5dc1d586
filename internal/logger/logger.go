package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	defaultLogger atomic.Pointer[slog.Logger]
	once          sync.Once
)

// Init initializes the global logger based on environment variables.
// DEBUG=true enables debug level logging.
func Init() {
	once.Do(func() {
		setup(os.Stdout, os.Getenv("DEBUG") == "true")
	})
}

// SetOutput replaces the global logger, e.g. to silence it in tests or
// to apply a debug setting read from a config file.
func SetOutput(w io.Writer, debug bool) {
	once.Do(func() {})
	setup(w, debug)
}

func setup(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source file information if in debug mode
		AddSource: debug,
	}

	l := slog.New(slog.NewTextHandler(w, opts))
	defaultLogger.Store(l)
	slog.SetDefault(l)
}

func get() *slog.Logger {
	Init()
	return defaultLogger.Load()
}

// Debug logs at Debug level.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Info logs at Info level.
func Info(msg string, args ...any) {
	get().Info(msg, args...)
}

// Warn logs at Warn level.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Error logs at Error level.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// Fatal logs at Error level and then exits.
func Fatal(msg string, args ...any) {
	get().Error(msg, args...)
	os.Exit(1)
}

// With returns a new logger with the given attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}
