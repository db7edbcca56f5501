package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-attend/internal/events"
	"go-attend/internal/messaging/kafka/consumer"
	"go-attend/internal/notification"
	"go-attend/internal/shared/connection"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	notifier := notification.NewLogNotifier(logger)

	sessionClosedReader := connection.NewKafkaReader(
		kafkaBroker,
		events.SessionClosedTopic,
		"go-attend-notifications",
	)
	defer sessionClosedReader.Close()

	gateDeniedReader := connection.NewKafkaReader(
		kafkaBroker,
		events.GateDeniedTopic,
		"go-attend-notifications",
	)
	defer gateDeniedReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeSessionClosed(ctx, sessionClosedReader, notifier, logger)
	go consumer.ConsumeGateDenied(ctx, gateDeniedReader, notifier, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
