package logging

import "log/slog"

// Level is a log level supported by [Logger].
type Level slog.Level

var _ slog.Leveler = Level(0)

// Supported log levels, in increasing order of severity.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
	// LevelFatal logs an error and terminates the process.
	LevelFatal = Level(slog.LevelError + 4)
)

// Level implements slog.Leveler.
func (l Level) Level() slog.Level { return slog.Level(l) }

// String returns the short label used in log output.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	case LevelFatal:
		return "FTL"
	default:
		return slog.Level(l).String()
	}
}
