package main

import (
	"context"
	"flag"
	"os"

	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/cli"
	"finledger/internal/log"
	"finledger/internal/sheets"
	gsheet "finledger/internal/sheets/google"
	"finledger/internal/sheets/memory"
	"finledger/internal/worker"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "keep exported rows in memory instead of writing to Google Sheets")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if *dryRun {
		if cfg.AMQPURL == "" {
			logger.ErrorContext(context.Background(), "AMQP_URL is required for the export worker")
			os.Exit(1)
		}
	} else if err := cfg.ValidateExport(); err != nil {
		logger.ErrorContext(context.Background(), "Export configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.InfoContext(context.Background(), "Starting finledger-worker", "dry_run", *dryRun)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// The worker only reads the ledger; it never publishes.
	backendCfg.AMQPURL = ""

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer result.Cleanup()

	var writer sheets.LedgerWriter
	if *dryRun {
		writer = memory.New()
		logger.InfoContext(context.Background(), "Exporting to memory")
	} else {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.ErrorContext(context.Background(), "Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		if err := client.EnsureHeader(context.Background()); err != nil {
			logger.ErrorContext(context.Background(), "Failed to prepare export sheet", log.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.InfoContext(context.Background(), "Google Sheets client initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	exportWorker := worker.NewExportWorker(result.Store, writer, cfg.HeartbeatInterval, logger)
	if err := exportWorker.Run(ctx, amqpClient); err != nil {
		logger.ErrorContext(ctx, "Export worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	exported, skipped, failed := exportWorker.Stats()
	logger.InfoContext(context.Background(), "Worker shutdown complete",
		"exported", exported,
		"skipped", skipped,
		"failed", failed)
}
