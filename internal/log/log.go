// Package log sets up the structured logger used by the command line tools.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a slog.Logger whose methods may be called on a nil *Logger.
// Debug and info messages to a nil Logger are dropped; warnings and errors
// go to the default slog logger.
type Logger struct {
	*slog.Logger
	LogFile string

	closer io.Closer
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%s: invalid log level", s)
	}
}

// New returns a Logger writing JSON records at level or above. With an
// empty file the records go to stderr, otherwise to file, rotated by size.
func New(level, file string) *Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    8, // MB
			MaxBackups: 2,
		}
		w, closer = lj, lj
	}

	l := &Logger{
		Logger:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})),
		LogFile: file,
		closer:  closer,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Debug("build", slog.String("go", bi.GoVersion), slog.String("path", bi.Main.Path),
			slog.String("version", bi.Main.Version))
	}
	return l
}

// Slog returns the underlying logger for APIs that take a *slog.Logger, or
// nil for a nil Logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return nil
	}
	return l.Logger
}

func (l *Logger) Debug(msg string, args ...any) {
	if l != nil {
		l.Logger.Debug(msg, args...)
	}
}

func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Fatalf logs an error, prints it to stderr and exits.
func (l *Logger) Fatalf(msg string, args ...any) {
	s := fmt.Sprintf(msg, args...)
	if l != nil && l.LogFile != "" {
		l.Logger.Error(s)
		_ = l.Close()
	}
	fmt.Fprintln(os.Stderr, s)
	os.Exit(1)
}
