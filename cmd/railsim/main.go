package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/advance-service/internal/config"
	"github.com/Dan9191/advance-service/internal/logging"
	"github.com/Dan9191/advance-service/internal/railsim"
)

func main() {
	godotenv.Load() // nolint:errcheck

	cfg, err := config.NewConfig()
	if err != nil {
		logging.New("INFO").Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel)

	rejectAbove := decimal.Zero
	if v := os.Getenv("RAILSIM_REJECT_ABOVE"); v != "" {
		if rejectAbove, err = decimal.NewFromString(v); err != nil {
			logger.Fatalf("Invalid RAILSIM_REJECT_ABOVE: %v", err)
		}
	}
	policy, err := railsim.NewPolicy(cfg.RailSimFailRate, cfg.RailSimFailAccounts, rejectAbove)
	if err != nil {
		logger.Fatalf("Failed to build settlement policy: %v", err)
	}

	sim := railsim.NewServer(cfg.RailSecret, policy, logger)
	server := &http.Server{
		Addr:         cfg.RailSimAddr,
		Handler:      sim.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Starting rail simulator on %s", cfg.RailSimAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Failed to stop rail simulator")
	}
}
