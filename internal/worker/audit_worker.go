package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockroom/catalog-service/internal/events"
)

// StartAuditWorker subscribes an audit log handler to account lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	handler := func(_ context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event", string(event.Type)),
			zap.Int64("user_id", event.UserID),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserDeleted,
		events.EventAPIKeyGenerated,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
