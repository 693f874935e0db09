package log

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Logger is the logging facade used by usecases and repositories. Handlers
// hold the underlying *otelzap.Logger directly.
type Logger interface {
	Info(ctx context.Context, message string, data ...interface{})
	Error(ctx context.Context, message string, data ...interface{})
}

var base *otelzap.Logger

// Setup builds the otelzap logger used by handlers and middleware.
func Setup() *otelzap.Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	return otelzap.New(zl)
}

func SetupLogger() *otelzap.Logger {
	return Setup()
}

func Init(l *otelzap.Logger) {
	base = l
}

func GetLogger() Logger {
	if base == nil {
		base = Setup()
	}
	return &logger{z: base}
}

type logger struct {
	z *otelzap.Logger
}

func (l *logger) Info(ctx context.Context, message string, data ...interface{}) {
	l.z.Ctx(ctx).Info(message, zap.Any("data", data))
}

func (l *logger) Error(ctx context.Context, message string, data ...interface{}) {
	l.z.Ctx(ctx).Error(message, zap.Any("data", data))
}
