package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipcast/internal/config"
	"shipcast/internal/growth"
	"shipcast/internal/handler"
	"shipcast/internal/predict"
	"shipcast/internal/runstore"
	"shipcast/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	policy, err := growth.ParsePolicy(cfg.Forecast.NegativePolicy)
	if err != nil {
		return err
	}

	store := runstore.New(cfg.Runs.TTL)
	go store.Sweep(ctx, cfg.Runs.SweepInterval)

	analyzer := service.NewAnalyzer(
		predict.New(cfg.Forecast.HorizonDays),
		store,
		service.Options{
			GrowthFloor:    cfg.Forecast.GrowthFloor,
			NegativePolicy: policy,
		},
		logger,
	)

	server := handler.NewRouter(cfg, handler.New(analyzer, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "address", cfg.HTTP.Address)
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
