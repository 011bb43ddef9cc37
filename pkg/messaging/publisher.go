package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Publisher delivers a JSON message to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload interface{}) error
	Close() error
}

// LogPublisher writes messages to the logger instead of a broker. It is used
// when event delivery is disabled.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the encoded payload.
func (p *LogPublisher) Publish(_ context.Context, queue string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message for %s: %w", queue, err)
	}
	p.logger.Info("event published", zap.String("queue", queue), zap.ByteString("body", body))
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error { return nil }
