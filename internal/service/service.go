package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advance-service/internal/metrics"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/Dan9191/advance-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service grants advances and collects their installments
type Service struct {
	repo    repository.Store
	rail    Rail
	log     *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location
}

// Option customizes a Service
type Option func(*Service)

// WithClock overrides the source of "today"
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides the business date
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithMetrics attaches Prometheus collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService initializes a new service
func NewService(repo repository.Store, rail Rail, log *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		rail: rail,
		log:  log,
		now:  time.Now,
		loc:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current business date
func (s *Service) Today() time.Time {
	return models.Day(s.now().In(s.loc))
}

// AddAccount registers a new account
func (s *Service) AddAccount(ctx context.Context, account *models.Account) error {
	if account.ID == models.BankAccountID {
		return fmt.Errorf("account id %d is reserved for the bank", account.ID)
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return err
	}
	s.log.WithField("account_id", account.ID).Info("Account added")
	return nil
}

// GetAccount returns an account with its loan schedule
func (s *Service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// DeleteAccount removes an account. Its transaction history is kept.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.WithField("account_id", id).Info("Account deleted")
	return nil
}

// ListAccounts returns every account
func (s *Service) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// ListTransactions returns every recorded transaction attempt
func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// DownloadReport fetches the rail's settlement report
func (s *Service) DownloadReport(ctx context.Context) (models.Report, error) {
	report, err := s.rail.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	s.log.WithField("entries", len(report)).Info("Report downloaded")
	return report, nil
}

// LoanStatus summarizes the repayment progress of an account's loan
type LoanStatus struct {
	AccountID   int64            `json:"account_id"`
	State       models.LoanState `json:"state"`
	Debt        decimal.Decimal  `json:"debt"`
	Paid        decimal.Decimal  `json:"paid"`
	Outstanding decimal.Decimal  `json:"outstanding"`
	GrantedOn   time.Time        `json:"granted_on"`
	SettledOn   *time.Time       `json:"settled_on,omitempty"`
	NextDue     *time.Time       `json:"next_due,omitempty"`
	Pending     int              `json:"pending"`
	Failed      int              `json:"failed"`
}

// LoanStatus reports the loan of an account as seen today
func (s *Service) LoanStatus(ctx context.Context, accountID int64) (LoanStatus, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return LoanStatus{}, err
	}
	loan := account.Loan
	if loan == nil {
		return LoanStatus{}, fmt.Errorf("account %d: %w", accountID, ErrNoLoan)
	}

	status := LoanStatus{
		AccountID:   accountID,
		State:       loan.State(s.Today()),
		Debt:        loan.Debt,
		Paid:        loan.Paid(),
		Outstanding: loan.Outstanding(),
		GrantedOn:   loan.GrantedOn,
		SettledOn:   loan.SettledOn,
	}
	for _, inst := range loan.Installments {
		switch inst.Status {
		case models.StatusPending:
			status.Pending++
			if status.NextDue == nil || inst.Date.Before(*status.NextDue) {
				due := inst.Date
				status.NextDue = &due
			}
		case models.StatusFail:
			status.Failed++
		}
	}
	return status, nil
}
