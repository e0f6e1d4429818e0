package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Dan9191/advance-service/internal/config"
	"github.com/Dan9191/advance-service/internal/integrations/rail"
	"github.com/Dan9191/advance-service/internal/logging"
	"github.com/Dan9191/advance-service/internal/metrics"
	"github.com/Dan9191/advance-service/internal/repository"
	"github.com/Dan9191/advance-service/internal/scheduler"
	"github.com/Dan9191/advance-service/internal/service"
)

var Version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment holds everything a subcommand needs, built once before it runs
type environment struct {
	configPath string

	cfg      *config.Config
	log      *logrus.Logger
	repo     *repository.Repository
	registry *prometheus.Registry
	svc      *service.Service
}

func newRootCmd() *cobra.Command {
	env := &environment{}
	root := &cobra.Command{
		Use:           "advancectl",
		Short:         "Grant cash advances and collect their repayments",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.load(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return env.close()
		},
	}
	root.PersistentFlags().StringVarP(&env.configPath, "config", "c", "", "Path to a YAML config file")

	root.AddCommand(accountCmd(env))
	root.AddCommand(advanceCmd(env))
	root.AddCommand(repaymentsCmd(env))
	root.AddCommand(loanCmd(env))
	root.AddCommand(transactionsCmd(env))
	root.AddCommand(reportCmd(env))
	root.AddCommand(serveCmd(env))
	return root
}

func (e *environment) load(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(e.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg
	e.log = logging.New(cfg.LogLevel)

	e.repo, err = repository.Open(ctx, repository.Dialect(cfg.DBDriver), cfg.DBConn)
	if err != nil {
		return err
	}

	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e.svc = service.NewService(e.repo, rail.NewClient(cfg, e.log), e.log,
		service.WithLocation(cfg.Location),
		service.WithMetrics(metrics.New(e.registry)),
	)
	return nil
}

func (e *environment) close() error {
	if e.repo == nil {
		return nil
	}
	return e.repo.Close()
}

// guard returns the run guard shared by every process pointed at the same Redis
func (e *environment) guard(ctx context.Context) (scheduler.Guard, func(), error) {
	if e.cfg.RedisURL == "" {
		e.log.Warn("REDIS_URL not set, duplicate runs are only prevented within this process")
		return scheduler.NewMemoryGuard(), func() {}, nil
	}
	client, err := scheduler.NewRedisClient(ctx, e.cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return scheduler.NewRedisGuard(client, e.cfg.RunGuardTTL), func() { client.Close() }, nil
}

func parseAccountID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}
