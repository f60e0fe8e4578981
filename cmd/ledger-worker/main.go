package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gstinvoicer/internal/amqp"
	"gstinvoicer/internal/cache"
	"gstinvoicer/internal/cli"
	"gstinvoicer/internal/config"
	applog "gstinvoicer/internal/log"
	gsheet "gstinvoicer/internal/sheets/google"
	"gstinvoicer/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateLedger)

	logger.Info("Starting ledger-worker",
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	// the service keeps this context for token refreshes
	ledger, err := gsheet.NewLedger(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err == nil {
		bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = ledger.EnsureHeader(bootCtx)
		bootCancel()
	}
	if err != nil {
		logger.Error("Failed to initialize Google Sheets ledger", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close failed", "error", err)
		}
	}()

	w := worker.NewLedgerWorker(ledger, logger)
	caches := cache.NewManager()
	caches.Register(w.Seen())
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx, client)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Ledger worker stopped with error", "error", err)
		caches.Stop()
		os.Exit(1)
	}
	<-done
	logger.Info("Ledger worker stopped")
}
