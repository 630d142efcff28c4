// Package logging implements a small structured logger for CLI usage.
//
// It wraps log/slog with printf-style helpers, a compact level set, and
// message prefixing, without pulling in a full TUI styling stack: output
// is a single logfmt-ish line per record, colored only when the
// destination looks like a terminal.
package logging

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/epage/git-branch-stash/internal/must"
)

// Options configures a [Logger].
type Options struct {
	// Level is the minimum level that will be logged.
	// Defaults to [LevelInfo].
	Level Level

	// OnFatal runs when a Fatal message is logged, in place of the
	// default os.Exit(1). It must not return.
	OnFatal func()
}

// Logger provides leveled, structured and printf-style logging.
type Logger struct {
	sl      *slog.Logger
	lvl     *slog.LevelVar
	onFatal func()
}

// LeveledLogger is satisfied by anything that can log at a given [Level].
type LeveledLogger interface {
	Log(lvl Level, msg string, kvs ...any)
}

var _ LeveledLogger = (*Logger)(nil)

// Nop returns a logger that discards everything it is given.
func Nop() *Logger {
	return New(io.Discard, &Options{Level: LevelFatal + 1})
}

// New builds a logger that writes to w.
func New(w io.Writer, opts *Options) *Logger {
	opts = cmp.Or(opts, &Options{Level: LevelInfo})

	var lvl slog.LevelVar
	lvl.Set(opts.Level.Level())

	onFatal := opts.OnFatal
	if onFatal == nil {
		onFatal = func() { os.Exit(1) }
	}

	h := newHandler(w).WithLeveler(&lvl)
	return &Logger{
		sl:      slog.New(h),
		lvl:     &lvl,
		onFatal: onFatal,
	}
}

// Level reports the logger's current minimum level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelFatal + 1
	}
	return Level(l.lvl.Level())
}

// SetLevel changes the minimum level logged.
func (l *Logger) SetLevel(lvl Level) {
	if l == nil {
		return
	}
	l.lvl.Set(lvl.Level())
}

// With returns a logger that always includes the given attributes.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || len(args) == 0 {
		return l
	}
	newL := *l
	newL.sl = l.sl.With(args...)
	return &newL
}

// WithPrefix returns a logger that prefixes every message with prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	if l == nil {
		return l
	}
	must.NotBeNilf(l.sl.Handler(), "logger has no handler")
	h, ok := l.sl.Handler().(*handler)
	if !ok {
		return l
	}
	newL := *l
	newL.sl = slog.New(h.WithPrefix(prefix))
	return &newL
}

// Log logs msg at the given level with the given alternating key-value pairs.
func (l *Logger) Log(lvl Level, msg string, kvs ...any) {
	if l == nil {
		if lvl >= LevelFatal {
			os.Exit(1)
		}
		return
	}

	l.sl.Log(context.Background(), lvl.Level(), msg, kvs...)
	if lvl >= LevelFatal {
		l.onFatal()
		panic("unreachable: OnFatal must not return")
	}
}

// Logf logs a printf-formatted message at the given level.
func (l *Logger) Logf(lvl Level, format string, args ...any) {
	l.Log(lvl, fmt.Sprintf(format, args...))
}

// Debug logs a structured message at [LevelDebug].
func (l *Logger) Debug(msg string, kvs ...any) { l.Log(LevelDebug, msg, kvs...) }

// Info logs a structured message at [LevelInfo].
func (l *Logger) Info(msg string, kvs ...any) { l.Log(LevelInfo, msg, kvs...) }

// Warn logs a structured message at [LevelWarn].
func (l *Logger) Warn(msg string, kvs ...any) { l.Log(LevelWarn, msg, kvs...) }

// Error logs a structured message at [LevelError].
func (l *Logger) Error(msg string, kvs ...any) { l.Log(LevelError, msg, kvs...) }

// Fatal logs a structured message at [LevelFatal] and exits.
func (l *Logger) Fatal(msg string, kvs ...any) { l.Log(LevelFatal, msg, kvs...) }

// Debugf logs a printf-style message at [LevelDebug].
func (l *Logger) Debugf(format string, args ...any) { l.Logf(LevelDebug, format, args...) }

// Infof logs a printf-style message at [LevelInfo].
func (l *Logger) Infof(format string, args ...any) { l.Logf(LevelInfo, format, args...) }

// Warnf logs a printf-style message at [LevelWarn].
func (l *Logger) Warnf(format string, args ...any) { l.Logf(LevelWarn, format, args...) }

// Errorf logs a printf-style message at [LevelError].
func (l *Logger) Errorf(format string, args ...any) { l.Logf(LevelError, format, args...) }

// Fatalf logs a printf-style message at [LevelFatal] and exits.
func (l *Logger) Fatalf(format string, args ...any) { l.Logf(LevelFatal, format, args...) }

// Writer returns an io.Writer that forwards each line written to it as a
// log message at the given level. done must be called to flush any
// trailing partial line.
func Writer(log LeveledLogger, lvl Level) (w io.Writer, done func()) {
	if log == nil {
		return io.Discard, func() {}
	}
	lw := &lineWriter{log: log, lvl: lvl}
	return lw, lw.flush
}

type lineWriter struct {
	log LeveledLogger
	lvl Level
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := indexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.log.Log(w.lvl, string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.buf) > 0 {
		w.log.Log(w.lvl, string(w.buf))
		w.buf = nil
	}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
