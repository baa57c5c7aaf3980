package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"payflow/internal/application/notification"
	"payflow/internal/infrastructure/broker"
	"payflow/internal/infrastructure/cache"
	"payflow/internal/infrastructure/config"
	"payflow/internal/infrastructure/database"
	"payflow/internal/infrastructure/notifier"
	"payflow/internal/infrastructure/repository"
	"payflow/internal/infrastructure/worker"
	"payflow/internal/shared/logger"
)

// Runs one of the two background roles. The publisher drains the outbox
// into the broker; the consumer delivers payment events to merchants.
//
//	worker publisher [env]
//	worker consumer [env]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: worker <publisher|consumer> [env]")
		os.Exit(1)
	}
	role := os.Args[1]

	env := "development"
	if len(os.Args) > 2 {
		env = os.Args[2]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger().With("role", role)
	log.Infow("starting worker", "environment", env)

	if err := database.Init(&cfg.Database, &cfg.OutboxDB); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stop func()
	switch role {
	case "publisher":
		stop, err = startPublisher(ctx, cfg, log)
	case "consumer":
		stop, err = startConsumer(ctx, cfg, log)
	default:
		fmt.Printf("unknown role %q, expected publisher or consumer\n", role)
		os.Exit(1)
	}
	if err != nil {
		log.Errorw("failed to start worker", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	cancel()
	stop()
	log.Infow("worker stopped")
}

func startPublisher(ctx context.Context, cfg *config.Config, log logger.Interface) (func(), error) {
	producer, err := broker.NewPublisher(cfg.Broker.Brokers)
	if err != nil {
		return nil, err
	}

	outboxRepo := repository.NewOutboxRepository(database.GetOutbox())
	publisher := worker.NewOutboxPublisher(outboxRepo, producer, cfg.Broker.Topic, cfg.Publisher, log)
	publisher.Start(ctx)

	return func() {
		publisher.Stop()
		if err := producer.Close(); err != nil {
			log.Errorw("failed to close broker producer", "error", err)
		}
	}, nil
}

func startConsumer(ctx context.Context, cfg *config.Config, log logger.Interface) (func(), error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	producer, err := broker.NewPublisher(cfg.Broker.Brokers)
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	source, err := broker.NewConsumer(
		cfg.Broker.Brokers,
		cfg.Broker.ConsumerGroup,
		cfg.Broker.Topic,
		cfg.Consumer.MaxInFlight,
	)
	if err != nil {
		producer.Close()
		redisClient.Close()
		return nil, err
	}

	dedup := cache.NewDeliveryDedup(redisClient, time.Duration(cfg.Consumer.DedupTTLSeconds)*time.Second)
	circuit := cache.NewMerchantCircuit(redisClient, cfg.Consumer.FailLimit, time.Duration(cfg.Consumer.BlockSeconds)*time.Second)
	rateLimit := cache.NewNotificationRateLimit(redisClient, cfg.Consumer.RateLimitPerMin)
	merchantClient := notifier.NewMerchantClient(
		cfg.Notifier.CallbackURL,
		time.Duration(cfg.Notifier.TimeoutSeconds)*time.Second,
	)

	outboxRepo := repository.NewOutboxRepository(database.GetOutbox())
	deliverUC := notification.NewDeliverUseCase(dedup, circuit, rateLimit, merchantClient, outboxRepo, log)

	consumer := worker.NewDeliveryConsumer(source, producer, deliverUC, cfg.Broker, cfg.Consumer, log)
	consumer.Start(ctx)

	return func() {
		consumer.Stop()
		if err := source.Close(); err != nil {
			log.Errorw("failed to close broker consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			log.Errorw("failed to close broker producer", "error", err)
		}
		if err := redisClient.Close(); err != nil {
			log.Errorw("failed to close redis client", "error", err)
		}
	}, nil
}
