package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tempo/internal/amqp"
	"tempo/internal/cli"
	"tempo/internal/sheets"
	gsheet "tempo/internal/sheets/google"
	"tempo/internal/worker"
)

func main() {
	logger := cli.Bootstrap()
	logger.Info("Starting tempo-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the render worker")
		os.Exit(1)
	}

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Google Sheets export is optional
	var invoiceWriter sheets.InvoiceWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		invoiceWriter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderWorker := worker.NewRenderWorker(repo, invoiceWriter, cfg.InvoiceOutputDir, cfg.RenderBatchSize)

	// On startup, render any invoices that might have been missed
	logger.Info("Performing startup render check...")
	if err := renderWorker.StartupRenderCheck(ctx); err != nil {
		logger.Error("Failed startup render check", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeInvoiceRender(ctx, func(msg *amqp.InvoiceRenderMessage) error {
			return renderWorker.HandleRenderMessage(ctx, msg)
		})
	})

	// Periodic scan for renders missed while the queue was unavailable
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RenderInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := renderWorker.ProcessPendingRenders(ctx); err != nil {
					logger.Error("Periodic render scan failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
