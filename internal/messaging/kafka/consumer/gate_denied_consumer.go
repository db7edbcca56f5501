package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-attend/internal/events"
	"go-attend/internal/notification"
)

func ConsumeGateDenied(
	ctx context.Context,
	reader *kafkago.Reader,
	notifier notification.Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.gate_denied")
	log.Info("gate denied consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("gate denied consumer stopped")
				return
			}
			log.Error("fetch gate denied message failed", zap.Error(err))
			continue
		}

		var event events.GateDeniedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode gate denied event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := notifier.GateDenied(ctx, event); err != nil {
			log.Error("notify gate denied failed",
				zap.String("participant_id", event.ParticipantID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit gate denied message failed", zap.Error(err))
			continue
		}
	}
}
