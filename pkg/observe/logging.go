package observe

import (
	"context"
	"log/slog"

	"github.com/vango-dev/vcell/pkg/signal"
)

// Logger is a signal.Observer that logs cell events. Passes and
// subscriptions are logged at debug level, rejected writes at warn.
type Logger struct {
	logger *slog.Logger
}

// Logging creates a logging observer.
func Logging(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// BeginPass implements signal.Observer.
func (l *Logger) BeginPass(cell string) func(int) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return nil
	}
	return func(notified int) {
		l.logger.Debug("cell pass", "cell", cell, "notified", notified)
	}
}

// Subscribed implements signal.Observer.
func (l *Logger) Subscribed(cell string, id signal.ID, immediate bool) {
	l.logger.Debug("cell subscribed", "cell", cell, "id", uint64(id), "immediate", immediate)
}

// Unsubscribed implements signal.Observer.
func (l *Logger) Unsubscribed(cell string, id signal.ID, deferred bool) {
	l.logger.Debug("cell unsubscribed", "cell", cell, "id", uint64(id), "deferred", deferred)
}

// Rejected implements signal.Observer.
func (l *Logger) Rejected(cell string, err error) {
	l.logger.Warn("cell write rejected", "cell", cell, "error", err)
}
