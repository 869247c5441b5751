package cmd

import (
	"context"
	"fmt"
	"time"

	"bookie/cache"
	"bookie/config"
	"bookie/database"
	"bookie/events"
	"bookie/metrics"
	"bookie/publisher"
	"bookie/repository"
	"bookie/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting bookie...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Optional balance cache; a missing REDIS_ADDR disables it
	var balanceCache service.BalanceCache
	if cfg.RedisAddr != "" {
		log.WithField("addr", cfg.RedisAddr).Info("Connecting to redis...")
		redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		bc := cache.NewBalanceCache(redisClient)
		bc.RegisterSubscribers(eventBus)
		balanceCache = bc
	}

	// Optional event stream; missing KAFKA_BROKERS disables it
	if len(cfg.KafkaBrokers) > 0 {
		log.WithFields(log.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Starting kafka publisher...")
		kafkaPublisher := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaPublisher.RegisterSubscribers(eventBus)
		defer kafkaPublisher.Close()
	}

	// Metrics and health endpoint
	collector := metrics.NewCollector()
	collector.RegisterSubscribers(eventBus)
	metricsServer := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return db.Ping(ctx)
	})
	log.WithField("port", cfg.MetricsPort).Info("Metrics server started")

	// Initialize services. The App is what a transport layer picks up;
	// the process itself only serves metrics and health until one is
	// attached.
	setApplication(&App{
		Accounts: service.NewAccountService(uowFactory, cfg.StartingBalance, cfg.MaxRetries),
		Wallet:   service.NewWalletService(uowFactory, balanceCache, cfg.MaxRetries),
		Bets:     service.NewBetService(uowFactory, cfg.MaxRetries),
		Catalog:  service.NewCatalogService(uowFactory, cfg.MaxRetries),
		Bus:      eventBus,
	})
	log.Info("Services initialized")

	log.WithField("environment", cfg.Environment).Info("Bookie is running")
	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown failed")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
