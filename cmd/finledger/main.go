package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"

	"finledger/internal/backend"
	"finledger/internal/cli"
	apphttp "finledger/internal/http"
	"finledger/internal/log"
)

func main() {
	importBills := flag.String("import-bills", "", "import bills from a JSON file and exit")
	ownerID := flag.Int64("owner", 0, "owner id the imported bills belong to")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	if *importBills != "" {
		code := runImport(logger, result, *importBills, *ownerID)
		_ = result.Cleanup()
		os.Exit(code)
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Services, result.Store, apphttp.Options{
		RateLimitPerMin:   cfg.RateLimitPerMin,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Logger:            logger,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.ErrorContext(ctx, "Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.ErrorContext(ctx, "Backend cleanup error", log.FieldError, err)
		}
	})

	logger.InfoContext(ctx, "Starting finledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", result.PublishingEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}

func runImport(logger *log.Logger, result *backend.BackendResult, path string, ownerID int64) int {
	ctx := context.Background()
	if ownerID <= 0 {
		logger.ErrorContext(ctx, "The -owner flag is required with -import-bills")
		return 2
	}

	f, err := os.Open(path)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open bills file", log.FieldError, err, "path", path)
		return 1
	}
	defer f.Close()

	n, err := result.Services.Catalog.ImportBills(ctx, ownerID, f)
	if err != nil {
		logger.ErrorContext(ctx, "Bill import failed", log.FieldError, err, log.FieldOwnerID, ownerID)
		return 1
	}
	logger.InfoContext(ctx, "Bill import finished", "imported", n, log.FieldOwnerID, ownerID)
	return 0
}
