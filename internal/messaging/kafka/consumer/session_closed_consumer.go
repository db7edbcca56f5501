package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-attend/internal/events"
	"go-attend/internal/notification"
)

func ConsumeSessionClosed(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notification.Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.session_closed")
	log.Info("session closed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("session closed consumer stopped")
				return
			}
			log.Error("fetch session closed message failed", zap.Error(err))
			continue
		}

		var event events.SessionClosedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// A malformed payload never becomes deliverable; skip it.
			log.Error("decode session closed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notifier.SessionClosed(ctx, event); err != nil {
			log.Error("notify session closed failed",
				zap.String("session_id", event.SessionID),
				zap.String("participant_id", event.ParticipantID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit session closed message failed", zap.Error(err))
			continue
		}

		log.Info("session closed notification delivered",
			zap.String("session_id", event.SessionID),
			zap.String("participant_id", event.ParticipantID),
			zap.String("reason", event.Reason),
		)
	}
}
