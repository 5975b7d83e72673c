package events

import (
	"context"

	"fastfood-be/internal/logger"

	"go.uber.org/zap"
)

// LogPublisher writes events to the structured log. It is the fallback
// when no broker is configured; alerts still reach log-based alerting.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, ev Event) error {
	log := logger.FromCtx(ctx).With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("key", ev.Key),
		zap.ByteString("payload", ev.Payload),
	)

	switch ev.Type {
	case TypeInventoryAlert, TypeLowStock:
		log.Warn("operational alert")
	default:
		log.Info("domain event")
	}
	return nil
}

func logPublishFailure(ctx context.Context, eventType, key string, err error) {
	logger.FromCtx(ctx).Error("failed to publish event",
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.Error(err),
	)
}
