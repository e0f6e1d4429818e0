package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Rail is the payment processor that moves the money
type Rail interface {
	// Execute submits a transfer. accepted is false when the processor refused to take it.
	Execute(ctx context.Context, src, dst int64, amount decimal.Decimal, direction models.Direction) (railID int64, accepted bool, err error)
	// Report returns the settlement outcome of every transaction the processor knows about.
	Report(ctx context.Context) (models.Report, error)
}

// submit sends t to the rail and resolves its final status from the settlement report.
// t.Status is always set on return; persisting t is up to the caller.
func (s *Service) submit(ctx context.Context, t *models.Transaction) error {
	railID, accepted, err := s.rail.Execute(ctx, t.SourceID, t.DestinationID, t.Amount, t.Direction)
	if err != nil {
		t.Status = models.StatusFail
		return fmt.Errorf("failed to execute transaction: %w", err)
	}
	if !accepted {
		t.Status = models.StatusFail
		return fmt.Errorf("%w: processor returned no transaction id", ErrTransactionRejected)
	}
	t.RailID = railID

	report, err := s.rail.Report(ctx)
	if err != nil {
		t.Status = models.StatusFail
		return fmt.Errorf("failed to resolve transaction %d: %w", railID, err)
	}
	t.Status = report.StatusOf(railID)
	if t.Status != models.StatusSuccess {
		return fmt.Errorf("%w: transaction %d settled as %s", ErrTransactionRejected, railID, t.Status)
	}

	s.log.WithFields(logrus.Fields{
		"rail_id":   railID,
		"direction": t.Direction,
		"amount":    t.Amount.String(),
	}).Info("Transaction performed")
	return nil
}

// recordTransaction persists a transaction attempt whatever its outcome
func (s *Service) recordTransaction(ctx context.Context, t *models.Transaction) error {
	if err := s.repo.AddTransaction(ctx, t); err != nil {
		s.log.WithError(err).WithField("rail_id", t.RailID).Error("Failed to record transaction")
		return err
	}
	s.log.WithFields(logrus.Fields{"id": t.ID, "rail_id": t.RailID, "status": t.Status}).Debug("Transaction recorded")
	return nil
}
