package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl    zerolog.Logger
	level LogLevel
}

// New returns a console logger writing to stdout at Info level.
func New() Logger {
	return NewZerolog(os.Stdout, Info, false)
}

// NewZerolog creates a logger backed by zerolog. When json is false the
// output goes through zerolog's console writer.
func NewZerolog(w io.Writer, level LogLevel, json bool) Logger {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = consoleTimeFormat

	var out io.Writer = w
	if !json {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	}
	zl := zerolog.New(out).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{zl: zl, level: level}
}

// LogMode sets the log level and returns a new logger instance.
func (l *zerologLogger) LogMode(level LogLevel) Logger {
	return &zerologLogger{zl: l.zl.Level(zerologLevel(level)), level: level}
}

// Info logs an informational message.
func (l *zerologLogger) Info(msg string, args ...any) {
	if l.level >= Info {
		l.emit(l.zl.Info(), msg, args)
	}
}

// Warn logs a warning message.
func (l *zerologLogger) Warn(msg string, args ...any) {
	if l.level >= Warn {
		l.emit(l.zl.Warn(), msg, args)
	}
}

// Error logs an error message.
func (l *zerologLogger) Error(msg string, args ...any) {
	if l.level >= Error {
		l.emit(l.zl.Error(), msg, args)
	}
}

// Debug logs a debug message.
func (l *zerologLogger) Debug(msg string, args ...any) {
	if l.level >= Debug {
		l.emit(l.zl.Debug(), msg, args)
	}
}

func (l *zerologLogger) emit(e *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprintf("%v", args[i])
		var val any = "(no value)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		if err, ok := val.(error); ok {
			e.AnErr(key, err)
			continue
		}
		e.Interface(key, val)
	}
	e.Msg(msg)
}

// ParseLevel maps a config string to a LogLevel, falling back to def.
func ParseLevel(s string, def LogLevel) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return Silent
	case "error":
		return Error
	case "warn", "warning":
		return Warn
	case "info":
		return Info
	case "debug":
		return Debug
	default:
		return def
	}
}

func zerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
