package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/auth"
	"pocketbook/internal/backend"
	"pocketbook/internal/cli"
	apphttp "pocketbook/internal/http"
	"pocketbook/internal/log"
	"pocketbook/internal/seed"
	"pocketbook/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	feedQueueSize   = 256
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info", "text"))
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, bcfg.Type.String())
		os.Exit(1)
	}

	opts := []store.Option{
		store.WithLogger(logger.WithComponent(log.ComponentStore)),
		store.WithDebounce(cfg.SaveDebounce),
		store.WithWriteTimeout(cfg.WriteTimeout),
	}
	if cfg.SeedDemoData {
		seedValue := cfg.SeedValue
		if seedValue == 0 {
			seedValue = time.Now().UnixNano()
		}
		opts = append(opts, store.WithSeed(seed.Func(seedValue, seed.DefaultCount, time.Now)))
	}
	st := store.New(res.Backend, opts...)
	st.Initialize(ctx, cfg.SeedDemoData)

	if cfg.FirstRunReset {
		if _, err := cli.FirstRunCleanup(bcfg.DataDir, st.Reset, logger); err != nil {
			logger.Warn("First run cleanup failed", log.FieldError, err)
		}
	}

	creds, err := factory.CreateCredentials(bcfg)
	if err != nil {
		logger.Error("Failed to initialize credential store", log.FieldError, err)
		os.Exit(1)
	}
	session := auth.NewSession(ctx, creds, logger)

	feedCtx, stopFeed := context.WithCancel(ctx)
	var feed *amqp.Client
	if cfg.AMQPURL != "" {
		feed, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change feed", log.FieldError, err)
			feed = nil
		} else {
			notifier := amqp.NewNotifier(feed, feedQueueSize, logger)
			st.Subscribe(notifier.Listen)
			go notifier.Run(feedCtx)
			logger.Info("Change feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, session, apphttp.Options{
		Logger:             logger,
		CurrencySymbol:     cfg.CurrencySymbol,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := st.Close(ctx); err != nil {
			logger.Error("Final save failed", log.FieldError, err)
		}
		stopFeed()
		if feed != nil {
			_ = feed.Close()
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting pocketbook server",
		"port", cfg.Port,
		log.FieldBackend, bcfg.Type.String(),
		log.FieldLocation, res.Backend.Location())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
