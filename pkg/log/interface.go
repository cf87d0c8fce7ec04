// Package log provides structured logging for the trajgo pipeline.
//
// The Logger interface is deliberately small and slog-shaped: leveled
// methods taking a message plus alternating key/value fields, a With method
// for contextual loggers, and an Enabled check for skipping expensive field
// construction. The production implementation is ZerologLogger; TestLogger
// captures records for assertions.
//
// Attribute keys for the pipeline's recurring fields (model name, scene
// counts, displacement metrics, error codes) live in attributes.go so that
// dataset loading, prediction and evaluation all log under the same names:
//
//	logger := log.NewZerologLogger(os.Stderr, log.LevelInfo).With(
//	    log.ModelNameKey, "Seq2Seq",
//	    log.ComponentKey, "models",
//	)
//	logger.Info("prediction finished",
//	    log.OperationKey, log.OperationPredict,
//	    log.ScenesKey, len(scenes),
//	    log.ADEKey, report.ADE,
//	)
package log

import (
	"context"
)

// Logger is the structured logging interface used across trajgo.
//
// Fields are alternating key/value pairs, as in log/slog. Implementations
// decide how values are encoded; ZerologLogger gives LogObjectMarshaler
// values (the pkg/errors types) a nested-object encoding.
type Logger interface {
	// Debug logs detail useful while diagnosing a run; usually filtered
	// out in production.
	Debug(msg string, fields ...any)

	// Info logs normal pipeline progress: datasets loaded, batches
	// delivered, evaluations finished.
	Info(msg string, fields ...any)

	// Warn logs a recoverable oddity, such as a lane filter that emptied
	// a scene's lane set.
	Warn(msg string, fields ...any)

	// Error logs a failure. Implementations may treat a leading error
	// value specially, e.g. attaching its stacktrace.
	Error(msg string, fields ...any)

	// With returns a logger that includes the given fields on every
	// subsequent record. The receiver is unchanged.
	With(fields ...any) Logger

	// Enabled reports whether a record at the given level would be
	// emitted, so callers can skip building costly fields:
	//
	//	if logger.Enabled(ctx, log.LevelDebug) {
	//	    logger.Debug("per-scene timings", "timings", collect())
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level. Values match slog.Level so the two systems can
// share thresholds.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the conventional upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider hands out loggers to the pipeline's components. It exists
// so tests can inject a capturing implementation where production code
// would construct a ZerologLogger.
type LoggerProvider interface {
	// GetLogger returns the default logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}
