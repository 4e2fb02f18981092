package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/corebank/transfer-pipeline/internal/config"
	"github.com/corebank/transfer-pipeline/internal/data/postgres"
	"github.com/corebank/transfer-pipeline/internal/logger"
	"github.com/corebank/transfer-pipeline/internal/payment_service"
	"github.com/corebank/transfer-pipeline/internal/payment_service/ledgerclient"
	"github.com/corebank/transfer-pipeline/internal/payment_service/publisher"
	"github.com/corebank/transfer-pipeline/internal/payment_service/service"
	"github.com/corebank/transfer-pipeline/internal/platform/messaging/producers"
	"github.com/corebank/transfer-pipeline/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payment_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Payment Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for completed events
	kafkaProducer, err := producers.NewCompletedEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transferRepo := postgres.NewTransferRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize ledger client and orchestrator
	ledgerClient := ledgerclient.NewHTTPClient(log, &cfg.Ledger)
	orchestrator := service.NewOrchestrator(log, transferRepo, outboxRepo, ledgerClient, postgresDB)

	// Initialize outbox publisher
	outboxPublisher, err := publisher.NewPublisher(&cfg.Outbox, outboxRepo, kafkaProducer, log)
	if err != nil {
		log.Error("Failed to initialize outbox publisher", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := payment_service.NewServer(log, cfg, orchestrator)
	log.Info("REST server initialized")

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start outbox publisher in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		outboxPublisher.Start(appCtx)
	}()

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

	// Cancel the application context, stopping the publisher loop
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the publisher to finish its current batch
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Outbox publisher stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	// Final status
	if serviceErr != nil {
		log.Error("Payment Service shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Payment Service shutdown completed with errors")
	} else {
		log.Info("Payment Service shutdown completed successfully")
	}
}
