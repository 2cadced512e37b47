package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/cinema-service/internal/events"
)

// StartAuditWorker subscribes a structured audit logger to every authentication event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	audit := logger.Named("audit")
	handler := func(_ context.Context, e events.Event) error {
		fields := []zap.Field{
			zap.String("event_id", e.ID),
			zap.String("event", string(e.Type)),
			zap.Time("at", e.Timestamp),
		}
		if e.UserID != "" {
			fields = append(fields, zap.String("user_id", e.UserID))
		}
		if e.Reason != "" {
			fields = append(fields, zap.String("reason", e.Reason))
		}
		audit.Info("auth event", fields...)
		return nil
	}

	events.SubscribeAll(dispatcher, handler)
}
