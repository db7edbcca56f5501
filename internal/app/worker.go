package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-attend/internal/billing"
	"go-attend/internal/geo"
	"go-attend/internal/messaging/kafka"
	"go-attend/internal/messaging/kafka/producer"
	"go-attend/internal/session"
	"go-attend/internal/shared/connection"
	"go-attend/internal/site"
)

// RunWorker hosts the outbox relay and the session watchdog. Both are timers
// over the same database, so they share one process.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	sessionRepo := session.NewRepository(gormDB)
	siteRepo := site.NewRepository(gormDB)
	gate := billing.NewGate(billing.NewRepository(gormDB), redisClient, envDuration("GATE_CACHE_TTL", billing.DefaultCacheTTL))
	evaluator := geo.NewEvaluator(envFloat("MAX_ACCURACY_METERS", geo.DefaultMaxAccuracyMeters))
	sessionService := session.NewService(
		sqlDB,
		sessionRepo,
		siteRepo,
		gate,
		evaluator,
		outboxRepo,
		session.Config{
			GraceWindow: envDuration("GRACE_WINDOW", session.DefaultGraceWindow),
			StaleWindow: envDuration("STALE_WINDOW", session.DefaultStaleWindow),
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go session.RunWatchdog(
		ctx,
		sessionService,
		envDuration("WATCHDOG_SWEEP_INTERVAL", time.Minute),
		logger,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
