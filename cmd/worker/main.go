package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/enricher/internal/config"
	"github.com/OFFIS-RIT/enricher/internal/queue"
	"github.com/OFFIS-RIT/enricher/internal/service"
	"github.com/OFFIS-RIT/enricher/internal/util"
	"github.com/OFFIS-RIT/enricher/pkg/logger"
	"github.com/OFFIS-RIT/enricher/pkg/logger/console"
)

func main() {
	util.LoadEnv()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "err", err)
	}

	processor, err := service.NewProcessor(cfg)
	if err != nil {
		logger.Fatal("Failed to create processor", "err", err)
	}

	// Init rabbitmq
	conn := queue.Init(cfg)
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.EnrichQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	// prefetch=1: one batch at a time, records inside a batch fan out
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.EnrichQueue,
		queue.EnrichQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.EnrichQueue, "err", err)
	}

	handler := queue.NewHandler(processor, ch, cfg.WorkerMaxRetries)
	logger.Info("Listening for messages", "queue", queue.EnrichQueue)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.EnrichQueue)
				return
			}
			startTime := time.Now()
			logger.Info("Received message", "queue", queue.EnrichQueue)
			handler.Handle(ctx, queue.EnrichQueue, msg)
			logger.Info("Processing time", "duration", time.Since(startTime))
		}
	}
}
