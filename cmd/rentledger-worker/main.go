package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"rentledger/internal/amqp"
	"rentledger/internal/config"
	"rentledger/internal/export"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting rentledger-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appender, err := export.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Sheets appender", "error", err)
		os.Exit(1)
	}
	logger.Info("Sheets appender initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeReceiptLogged(ctx, func(ctx context.Context, msg *amqp.ReceiptLoggedMessage) error {
			if err := appender.AppendReceipt(ctx, msg); err != nil {
				return err
			}
			logger.Info("Receipt exported",
				"receipt_no", msg.ReceiptNo,
				"email_log_id", msg.EmailLogID)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
