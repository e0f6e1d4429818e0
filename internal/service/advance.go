package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GrantAdvance credits amount to the account and attaches a repayment plan.
// It returns the rail transaction id of the credit.
func (s *Service) GrantAdvance(ctx context.Context, accountID int64, amount decimal.Decimal) (int64, error) {
	if amount.LessThan(MinAdvance) {
		return 0, fmt.Errorf("%w: %s is below the minimum of %s", ErrInvalidAmount, amount, MinAdvance)
	}

	today := s.Today()
	t := &models.Transaction{
		Amount:        amount,
		Direction:     models.DirectionCredit,
		Date:          today,
		SourceID:      models.BankAccountID,
		DestinationID: accountID,
	}
	log := s.log.WithFields(logrus.Fields{"account_id": accountID, "amount": amount.String()})

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return 0, err
		}
		log.Error("Advance refused: account does not exist")
		s.metrics.AdvanceFailed("account_not_found")
		return 0, s.refuse(ctx, t, err)
	}
	if account.HasOpenLoan() {
		log.Error("Advance refused: loan still outstanding")
		s.metrics.AdvanceFailed("loan_outstanding")
		return 0, s.refuse(ctx, t, fmt.Errorf("account %d: %w", accountID, ErrLoanOutstanding))
	}

	submitErr := s.submit(ctx, t)
	if err := s.recordTransaction(ctx, t); err != nil {
		return 0, errors.Join(submitErr, err)
	}
	if submitErr != nil {
		log.WithError(submitErr).Error("Advance failed")
		s.metrics.AdvanceFailed("rejected")
		return 0, submitErr
	}

	account.Loan = &models.Loan{
		Debt:         amount,
		GrantedOn:    today,
		Installments: BuildSchedule(amount, today, accountID),
	}
	account.Balance = account.Balance.Add(amount)
	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		// the rail has already moved the money
		log.WithError(err).WithField("rail_id", t.RailID).Error("Advance paid out but loan was not stored")
		return 0, err
	}

	s.metrics.AdvanceGranted(amount.InexactFloat64())
	log.WithField("rail_id", t.RailID).Info("Advance performed")
	return t.RailID, nil
}

// refuse records t as failed without contacting the rail
func (s *Service) refuse(ctx context.Context, t *models.Transaction, cause error) error {
	t.Status = models.StatusFail
	if err := s.recordTransaction(ctx, t); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
