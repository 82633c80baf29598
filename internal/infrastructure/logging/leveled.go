package logging

import (
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Leveled adapts the logger to retryablehttp.LeveledLogger.
type Leveled struct {
	sugar *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = (*Leveled)(nil)

// Leveled returns a go-retryablehttp compatible view of the logger.
func (l *Logger) Leveled() *Leveled {
	return &Leveled{sugar: l.Logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}
