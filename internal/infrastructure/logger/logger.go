package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/haxorport/rawrelay/internal/domain/port"
)

// TimeFormat is the timestamp layout of console output
const TimeFormat = "2006-01-02 15:04:05"

// ParseLevel converts a string to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is an implementation of port.Logger backed by zerolog
type Logger struct {
	zl     zerolog.Logger
	level  *zerolog.Level
	closer io.Closer
}

// NewLogger creates a new Logger writing human-readable lines to writer
func NewLogger(writer io.Writer, level string) *Logger {
	console := zerolog.ConsoleWriter{
		Out:        writer,
		TimeFormat: TimeFormat,
		NoColor:    true,
	}
	return newLogger(console, level, nil)
}

// NewFileLogger creates a logger that writes to the console writer and appends to a file
func NewFileLogger(console io.Writer, filePath string, level string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writer := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: console, TimeFormat: TimeFormat, NoColor: true},
		file,
	)
	return newLogger(writer, level, file), nil
}

func newLogger(writer io.Writer, level string, closer io.Closer) *Logger {
	lvl := ParseLevel(level)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}
	return &Logger{
		zl:     zerolog.New(writer).With().Timestamp().Logger(),
		level:  &lvl,
		closer: closer,
	}
}

// SetLevel changes the logging level, shared by all loggers derived with With
func (l *Logger) SetLevel(level string) {
	*l.level = ParseLevel(level)
}

// Level returns the current level name
func (l *Logger) Level() string {
	return l.level.String()
}

// With returns a child logger carrying key=value
func (l *Logger) With(key, value string) port.Logger {
	return &Logger{
		zl:    l.zl.With().Str(key, value).Logger(),
		level: l.level,
	}
}

func (l *Logger) log(level zerolog.Level, format string, args ...interface{}) {
	if level < *l.level {
		return
	}
	event := l.zl.WithLevel(level)
	if len(args) > 0 {
		event.Msgf(format, args...)
		return
	}
	event.Msg(format)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(zerolog.DebugLevel, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(zerolog.InfoLevel, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(zerolog.WarnLevel, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(zerolog.ErrorLevel, format, args...)
}

// Close closes the log file if there is one
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Ensure Logger implements port.Logger
var _ port.Logger = (*Logger)(nil)
