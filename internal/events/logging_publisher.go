package events

import (
	"context"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
)

// LoggingPublisher writes events to the log when no broker is configured.
type LoggingPublisher struct {
	logger *zap.Logger
}

func NewLoggingPublisher(logger *zap.Logger) *LoggingPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(_ context.Context, key string, event any) error {
	p.logger.Debug("event", zap.String("key", key), zap.Any("event", event))
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }

var _ interfaces.EventPublisher = (*LoggingPublisher)(nil)
