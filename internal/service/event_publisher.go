package service

import (
	"context"

	"ai-tutoring-be/internal/pkg/logger"
	"ai-tutoring-be/pkg/events"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publishEvent treats domain events as auxiliary: failures are logged, never returned.
func publishEvent(ctx context.Context, publisher EventPublisher, log logger.ILogger, module string, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn(module, "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
