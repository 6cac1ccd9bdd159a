// Command pocketbook-feed follows the transaction change feed and logs a
// running summary of it.
package main

import (
	"os"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cli"
	"pocketbook/internal/log"
	"pocketbook/internal/worker"
)

const summaryInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info", "text"))
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	logger.Info("Starting pocketbook-feed")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	feedWorker := worker.NewFeedWorker(logger)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, feedWorker.LogSummary)

	go feedWorker.Run(ctx, summaryInterval)
	go func() {
		err := client.ConsumeChanges(ctx, feedWorker.HandleChange)
		if err != nil && ctx.Err() == nil {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	if err := client.Close(); err != nil {
		logger.Warn("AMQP close failed", log.FieldError, err)
	}
}
