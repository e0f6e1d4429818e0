package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/Dan9191/advance-service/internal/service"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Runner executes the repayments of one business day
type Runner interface {
	RunRepaymentsOn(ctx context.Context, day time.Time) (service.RunSummary, error)
}

// Notifier receives the outcome of every run
type Notifier interface {
	SendRunSummary(summary service.RunSummary, runErr error) error
}

// Scheduler fires the repayment run once per day on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	guard    Guard
	notifier Notifier
	log      *logrus.Logger
	loc      *time.Location
	now      func() time.Time
}

// New creates a scheduler for the standard cron spec evaluated in loc
func New(spec string, loc *time.Location, runner Runner, guard Guard, notifier Notifier, log *logrus.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		runner:   runner,
		guard:    guard,
		notifier: notifier,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}

	logger := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.WithError(err).Error("Scheduled repayment run failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid repayment schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing runs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.log.WithField("next_run", entry.Next).Info("Repayment scheduler started")
	}
}

// Stop stops the schedule; the returned context is done once a running job finishes
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce runs today's repayments unless another run already claimed the day.
// It reports whether a run took place.
func (s *Scheduler) RunOnce(ctx context.Context) (bool, error) {
	day := models.Day(s.now().In(s.loc))
	log := s.log.WithField("day", models.FormatDay(day))

	if s.guard != nil {
		claimed, err := s.guard.Acquire(ctx, day, uuid.NewString())
		if err != nil {
			return false, err
		}
		if !claimed {
			log.Warn("Repayments already performed for this day, skipping")
			return false, nil
		}
	}

	summary, runErr := s.runner.RunRepaymentsOn(ctx, day)
	if s.notifier != nil {
		if err := s.notifier.SendRunSummary(summary, runErr); err != nil {
			log.WithError(err).Warn("Failed to send run summary")
		}
	}
	if runErr != nil {
		return true, runErr
	}
	log.Info("Payments performed")
	return true, nil
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(fields(keysAndValues)).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
