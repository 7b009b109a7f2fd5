package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hisaab/internal/amqp"
	"hisaab/internal/cli"
	apphttp "hisaab/internal/http"
	"hisaab/internal/quickentry"
	"hisaab/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()

	logger.Info("Starting hisaab server")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// AMQP is optional; without it expenses stay local and unsynced.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - expenses will sync via hisaab-worker")
		}
	} else {
		logger.Info("AMQP disabled - expenses will not sync to Google Sheets")
	}

	expenseService := services.NewExpenseService(sqliteRepo, amqpClient)
	defer expenseService.Close()
	dashboardService := services.NewDashboardService(sqliteRepo)
	chatHandler := quickentry.NewHandler(expenseService)

	srv := apphttp.NewServer(":"+cfg.Port, expenseService, sqliteRepo, dashboardService, chatHandler)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting hisaab server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}
	logger.Info("Server stopped gracefully")
}
