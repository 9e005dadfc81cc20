// Package telemetry builds the structured logger used for a single
// recommendation run: one zap.Logger per run, tagged with the run's UUID so
// every line it emits can be correlated back to one invocation of Extend.
package telemetry

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/indexadvisor/internal/advisor/advisorerr"
)

// NewLogger builds a production zap.Logger tagged with a run ID, at the
// given level ("debug", "info", "warn", "error"; anything else falls back
// to "info").
func NewLogger(runID string, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run_id", runID)), nil
}

// NewRunLogger is NewLogger with a freshly generated run ID, for callers
// that don't already have one (e.g. the CLI, which mints its own instead of
// reusing the HTTP API's request-scoped run ID).
func NewRunLogger(level string) (*zap.Logger, string, error) {
	runID := uuid.New().String()
	logger, err := NewLogger(runID, level)
	return logger, runID, err
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// LogRunError inspects err for the sentinel kinds the advisor cares about at
// run time and logs it at the appropriate level: a missing index size is a
// warning (the run goes on with the size floored to one byte), everything
// else is an error.
func LogRunError(logger *zap.Logger, err error) {
	if err == nil {
		return
	}
	if advisorerr.IsSizeUnknown(err) {
		logger.Warn("index size could not be determined", zap.Error(err))
		return
	}
	logger.Error("recommendation run failed", zap.Error(err))
}
