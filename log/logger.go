package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xiaoyuanzhu-com/todos/config"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
)

func init() {
	cfg := config.Get()

	// Configure output based on environment
	var output io.Writer
	if cfg.IsDevelopment() {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.Kitchen,
		}
	} else {
		// JSON output for production
		output = os.Stdout
	}

	logger = zerolog.New(output).
		Level(parseLogLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Logger()
}

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

// SetOutput redirects the global logger, keeping its level
func SetOutput(w io.Writer) {
	loggerLock.Lock()
	logger = logger.Output(w)
	loggerLock.Unlock()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	l := current()
	return l.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	l := current()
	return l.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	l := current()
	return l.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	l := current()
	return l.Error()
}

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event {
	l := current()
	return l.Fatal()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	return current()
}

// ModuleLogger tags every event with a module name. It resolves the global
// logger on each call so SetLevel and SetOutput apply to it too.
type ModuleLogger struct {
	module string
}

// GetLogger returns a logger for the named module
func GetLogger(module string) ModuleLogger {
	return ModuleLogger{module: module}
}

func (m ModuleLogger) with() zerolog.Logger {
	return current().With().Str("module", m.module).Logger()
}

// Debug logs a debug message
func (m ModuleLogger) Debug() *zerolog.Event {
	l := m.with()
	return l.Debug()
}

// Info logs an info message
func (m ModuleLogger) Info() *zerolog.Event {
	l := m.with()
	return l.Info()
}

// Warn logs a warning message
func (m ModuleLogger) Warn() *zerolog.Event {
	l := m.with()
	return l.Warn()
}

// Error logs an error message
func (m ModuleLogger) Error() *zerolog.Event {
	l := m.with()
	return l.Error()
}

// Fatal logs a fatal message and exits
func (m ModuleLogger) Fatal() *zerolog.Event {
	l := m.with()
	return l.Fatal()
}

// zerologWriter wraps a zerolog.Logger to implement io.Writer
type zerologWriter struct {
	logger zerolog.Logger
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	// Trim trailing newline that stdlib log adds
	msg := strings.TrimSuffix(string(p), "\n")
	w.logger.Warn().Msg(msg)
	return len(p), nil
}

// StdErrorLogger returns a standard library *log.Logger that writes to zerolog.
// Useful for passing to http.Server.ErrorLog.
func StdErrorLogger() *stdlog.Logger {
	return stdlog.New(zerologWriter{logger: current()}, "", 0)
}
