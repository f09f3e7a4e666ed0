// Package logger narrates requirement checks and pip runs through zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	// Writer receives entries when File is empty. Defaults to stderr so pip
	// narration never mixes with command output on stdout.
	Writer io.Writer
	// File, when set, is opened for appending and replaces Writer.
	File string
}

// Logger wraps zerolog with the narration calls used while checking and
// installing requirements. A nil *Logger discards everything.
type Logger struct {
	base   zerolog.Logger
	closer io.Closer
}

// New creates a Logger from opts. Close releases the log file, if any.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	l := &Logger{}
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.closer = f
		out = f
	}

	if opts.HumanReadable {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    opts.File != "",
		}
	}

	l.base = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// Close releases the log file opened for Options.File.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// WithFields returns a derived logger that always writes the supplied fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Fields(fields).Logger()}
}

// ForRequirement returns a derived logger tagged with the requirement's spec.
func (l *Logger) ForRequirement(spec string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{base: l.base.With().Str("requirement", spec).Logger()}
}

func (l *Logger) write(level zerolog.Level, err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.WithLevel(level)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) { l.write(zerolog.InfoLevel, nil, msg) }

// Debug writes a debug-level log entry if enabled.
func (l *Logger) Debug(msg string) { l.write(zerolog.DebugLevel, nil, msg) }

// Warn writes a warning, attaching err when non-nil.
func (l *Logger) Warn(err error, msg string) { l.write(zerolog.WarnLevel, err, msg) }

// Error writes an error entry, attaching err when non-nil.
func (l *Logger) Error(err error, msg string) { l.write(zerolog.ErrorLevel, err, msg) }

// Output relays one line of child process output at the given level.
func (l *Logger) Output(level zerolog.Level, line string) {
	if l == nil {
		return
	}
	l.base.WithLevel(level).Str("stream", "pip").Msg(line)
}
