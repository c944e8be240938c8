package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/cli"
	apphttp "tempo/internal/http"
	"tempo/internal/services"
	"tempo/internal/worker"
)

func main() {
	logger := cli.Bootstrap()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional. Without it invoices are rendered by the in-process
	// periodic scan instead of the dedicated worker.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - rendering invoices in process")
	}

	invoiceService := services.NewInvoiceService(repo, amqpClient)
	importService := services.NewImportService(repo)

	srv := apphttp.NewServer(":"+cfg.Port, repo, invoiceService, importService)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if amqpClient == nil {
		renderWorker := worker.NewRenderWorker(repo, nil, cfg.InvoiceOutputDir, cfg.RenderBatchSize)
		go func() {
			ticker := time.NewTicker(cfg.RenderInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := renderWorker.ProcessPendingRenders(ctx); err != nil {
						logger.Error("Periodic render scan failed", "error", err)
					}
				}
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting tempo server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
