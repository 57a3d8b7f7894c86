package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"reinf/internal/backend"
	"reinf/internal/cli"
	"reinf/internal/export"
	apphttp "reinf/internal/http"
	"reinf/internal/log"
	"reinf/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	opts, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).Create(opts)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, opts.Type.String())
		os.Exit(1)
	}

	columns := export.DefaultColumns()
	if cfg.ReportColumnsFile != "" {
		columns, err = export.LoadColumnsFile(cfg.ReportColumnsFile)
		if err != nil {
			logger.Error("Failed to load report columns", log.FieldError, err, "path", cfg.ReportColumnsFile)
			os.Exit(1)
		}
	}

	svc := services.NewInvoiceService(result.Repo, result.Publisher)

	srv := apphttp.NewServer(":"+cfg.Port, svc, columns, cfg.CompanyLabel)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting reinf server",
		"port", cfg.Port,
		log.FieldBackend, opts.Type.String(),
		"sync_enabled", result.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
