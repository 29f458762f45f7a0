// Package logging provides structured logging for the core components.
//
// Unlike the ambient, package-level logger registry this was adapted
// from, every Logger here is an explicit instance: callers construct
// one (typically once, at wiring time) and keep it with their own
// wiring; cmd/reflexctl uses it from the graph and epoch hooks it
// installs. The core packages themselves take no Logger. There is no
// process-wide singleton —
// per spec's design note, process-wide state is a choice of the binary
// wiring things together, not of the library.
package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags which subsystem emitted a log line.
type Category string

const (
	CategoryGraph    Category = "graph"
	CategorySnapshot Category = "snapshot"
	CategoryEpoch    Category = "epoch"
	CategoryVAD      Category = "vad"
	CategoryStore    Category = "store"
)

// Logger wraps a zap.Logger and hands out category-scoped children.
type Logger struct {
	base *zap.Logger
}

// New builds a Logger. development=true switches to a human-readable
// console encoder at debug level, mirroring the teacher's verbose-flag
// behavior (zap.NewAtomicLevelAt(zapcore.DebugLevel) when --verbose).
func New(development bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{base: z}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// For returns a child logger tagged with category.
func (l *Logger) For(category Category) *zap.Logger {
	return l.base.With(zap.String("category", string(category)))
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Timer measures and logs the duration of one operation at Debug level,
// the same StartTimer/Stop shape the teacher used for performance
// telemetry, now scoped to an explicit Logger instance instead of a
// global category map.
type Timer struct {
	logger *zap.Logger
	op     string
	start  time.Time
}

// StartTimer begins timing op under category.
func (l *Logger) StartTimer(category Category, op string) *Timer {
	return &Timer{logger: l.For(category), op: op, start: time.Now()}
}

// Stop logs the elapsed duration.
func (t *Timer) Stop() {
	t.logger.Debug("operation complete", zap.String("op", t.op), zap.Duration("duration", time.Since(t.start)))
}
