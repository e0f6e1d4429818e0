package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunSummary describes one repayment run
type RunSummary struct {
	RunID          string    `json:"run_id"`
	Day            time.Time `json:"day"`
	Accounts       int       `json:"accounts"`
	Attempted      int       `json:"attempted"`
	Succeeded      int       `json:"succeeded"`
	Failed         int       `json:"failed"`
	Rescheduled    int       `json:"rescheduled"`
	Settled        int       `json:"settled"`
	FailedAccounts []int64   `json:"failed_accounts,omitempty"`
}

// RunDailyRepayments collects every installment due today
func (s *Service) RunDailyRepayments(ctx context.Context) (RunSummary, error) {
	return s.RunRepaymentsOn(ctx, s.Today())
}

// RunRepaymentsOn collects the installments due on day. A failure on one account
// stops that account's remaining installments but not the other accounts; all
// account failures are returned joined.
func (s *Service) RunRepaymentsOn(ctx context.Context, day time.Time) (RunSummary, error) {
	day = models.Day(day)
	summary := RunSummary{RunID: uuid.NewString(), Day: day}
	log := s.log.WithFields(logrus.Fields{"run_id": summary.RunID, "day": models.FormatDay(day)})

	start := time.Now()
	defer func() { s.metrics.ObserveRun(time.Since(start)) }()

	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load accounts: %w", err)
	}

	var errs []error
	for _, account := range accounts {
		if account.Loan == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		summary.Accounts++
		if err := s.repayAccount(ctx, account, day, &summary, log); err != nil {
			summary.FailedAccounts = append(summary.FailedAccounts, account.ID)
			errs = append(errs, fmt.Errorf("account %d: %w", account.ID, err))
		}
	}

	log.WithFields(logrus.Fields{
		"accounts":  summary.Accounts,
		"attempted": summary.Attempted,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"settled":   summary.Settled,
	}).Info("Loan payments performed")
	return summary, errors.Join(errs...)
}

func (s *Service) repayAccount(ctx context.Context, account *models.Account, day time.Time, summary *RunSummary, log *logrus.Entry) error {
	loan := account.Loan
	log = log.WithField("account_id", account.ID)

	for _, i := range loan.DueOn(day) {
		summary.Attempted++
		inst := loan.Installments[i]
		submitErr := s.submit(ctx, &inst)
		recordErr := s.recordTransaction(ctx, &inst)
		loan.Installments[i] = inst

		if submitErr != nil {
			next := reschedule(loan, inst)
			summary.Failed++
			summary.Rescheduled++
			s.metrics.InstallmentFailed()
			log.WithError(submitErr).WithField("rescheduled_to", models.FormatDay(next.Date)).Error("Loan payment failed")
			if err := s.repo.UpdateAccount(ctx, account); err != nil {
				return errors.Join(submitErr, recordErr, err)
			}
			return errors.Join(submitErr, recordErr)
		}

		summary.Succeeded++
		s.metrics.InstallmentPaid()
		account.Balance = account.Balance.Sub(inst.Amount)
		if !loan.HasPending() {
			settled := day
			loan.SettledOn = &settled
			summary.Settled++
			s.metrics.LoanSettled()
			log.Info("Loan settled")
		}
		if err := s.repo.UpdateAccount(ctx, account); err != nil {
			return errors.Join(recordErr, err)
		}
		if recordErr != nil {
			return recordErr
		}
		log.WithField("amount", inst.Amount.String()).Info("Loan payment performed")
	}
	return nil
}

// reschedule appends a fresh attempt for a failed installment one interval after
// the last entry of the schedule and returns it
func reschedule(loan *models.Loan, failed models.Transaction) models.Transaction {
	next := models.Transaction{
		Amount:        failed.Amount,
		Direction:     failed.Direction,
		Date:          loan.LastDueDate().Add(models.InstallmentInterval),
		SourceID:      failed.SourceID,
		DestinationID: failed.DestinationID,
	}
	loan.Installments = append(loan.Installments, next)
	return next
}
