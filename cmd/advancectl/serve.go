package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dan9191/advance-service/internal/handler"
	"github.com/Dan9191/advance-service/internal/notify"
	"github.com/Dan9191/advance-service/internal/scheduler"
)

const shutdownPeriod = 30 * time.Second

func serveCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily repayment scheduler with its ops endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := env.log

			guard, closeGuard, err := env.guard(ctx)
			if err != nil {
				return err
			}
			defer closeGuard()

			var notifier scheduler.Notifier = notify.Nop{}
			if env.cfg.MailEnabled() {
				notifier = notify.NewSender(env.cfg, log)
			}

			sched, err := scheduler.New(env.cfg.RepaymentSchedule, env.cfg.Location, env.svc, guard, notifier, log)
			if err != nil {
				return err
			}

			h := handler.NewHandler(env.svc, env.registry, log)
			srv := &http.Server{
				Addr:         env.cfg.OpsAddr,
				Handler:      h.Router(),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: env.cfg.RailTimeout + 5*time.Second,
			}

			sched.Start()
			errCh := make(chan error, 1)
			go func() {
				log.Infof("Starting ops server on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			var serveErr error
			select {
			case sig := <-sigCh:
				log.WithField("signal", sig.String()).Info("Shutdown signal received")
			case serveErr = <-errCh:
				log.WithError(serveErr).Error("Ops server failed")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Failed to stop ops server")
			}
			select {
			case <-sched.Stop().Done():
			case <-shutdownCtx.Done():
				log.Warn("Repayment run still in progress at shutdown")
			}
			log.Info("Stopped")
			return serveErr
		},
	}
}
