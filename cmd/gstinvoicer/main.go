package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gstinvoicer/internal/backend"
	"gstinvoicer/internal/cli"
	"gstinvoicer/internal/controller"
	apphttp "gstinvoicer/internal/http"
	applog "gstinvoicer/internal/log"
	"gstinvoicer/internal/notify"
	"gstinvoicer/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	logger.Info("Starting gstinvoicer",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", cfg.AMQPURL != "")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := backend.NewFactory(logger).CreateBackend(bootCtx, backendCfg)
	bootCancel()
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	svc := services.NewInvoiceService(result.Store, result.Publisher).WithLogger(logger)
	notifier := notify.New(cfg.NotifyDelay)
	session := controller.NewSession(svc, notifier, cfg.PublicBaseURL)
	session.Start(context.Background(), cfg.StartMode, cfg.StartInvoiceID)
	logger.Info("Initial view resolved", applog.FieldView, session.State().View())

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Session:      session,
		Ready:        result.Ready,
		Logger:       logger,
		NotifyDelay:  cfg.NotifyDelay,
		PDFCacheSize: cfg.PDFCacheSize,
		PDFCacheTTL:  cfg.PDFCacheTTL,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		notifier.Stop()
		return nil
	})

	err = g.Wait()

	if result.Cleanup != nil {
		if cerr := result.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup failed", "error", cerr)
		}
	}
	if err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped gracefully")
}
