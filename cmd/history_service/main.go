package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/transfer-pipeline/internal/config"
	"github.com/corebank/transfer-pipeline/internal/data/mongo"
	"github.com/corebank/transfer-pipeline/internal/history_service/projector"
	"github.com/corebank/transfer-pipeline/internal/logger"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/consumers"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/producers"
	"github.com/corebank/transfer-pipeline/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("history_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting History Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize MongoDB with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize history repository (ensures the unique transaction_id index)
	historyRepo, err := mongo.NewHistoryRepository(appCtx, log, mongoDB.Database())
	if err != nil {
		log.Error("Failed to initialize history repository", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer is nil when DLQTopic is not configured; keep the interface
	// nil too so the projector's nil check holds
	var dlqPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		dlqPublisher = dlqProducer
	}

	// Initialize the projector
	historyProjector := projector.NewProjector(log, historyRepo, dlqPublisher)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Start the consumer
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.CompletedTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := historyProjector.Run(appCtx, kafkaConsumer, cfg.Kafka.CompletedTopic, cfg.Kafka.ConsumerGroup); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("History Service shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("History Service shutdown completed with errors")
	} else {
		log.Info("History Service shutdown completed successfully")
	}
}
