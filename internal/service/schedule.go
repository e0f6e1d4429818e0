package service

import (
	"time"

	"github.com/Dan9191/advance-service/internal/models"
	"github.com/shopspring/decimal"
)

// MinAdvance is the smallest advance that still yields a non-zero cent installment
var MinAdvance = decimal.New(models.NumberOfInstallments, -2)

// BuildSchedule splits an advance into weekly debits from the account to the bank.
// Installment k is due k weeks after the advance date. Each installment is the
// advance divided by the installment count rounded down to cents; the last one
// takes the remainder so the schedule sums exactly to the advance.
func BuildSchedule(amount decimal.Decimal, advanceDate time.Time, accountID int64) []models.Transaction {
	n := int64(models.NumberOfInstallments)
	share := amount.Div(decimal.NewFromInt(n)).RoundDown(2)
	last := amount.Sub(share.Mul(decimal.NewFromInt(n - 1)))

	day := models.Day(advanceDate)
	schedule := make([]models.Transaction, 0, n)
	for k := int64(1); k <= n; k++ {
		installment := share
		if k == n {
			installment = last
		}
		schedule = append(schedule, models.Transaction{
			Amount:        installment,
			Direction:     models.DirectionDebit,
			Date:          day.Add(time.Duration(k) * models.InstallmentInterval),
			SourceID:      accountID,
			DestinationID: models.BankAccountID,
		})
	}
	return schedule
}
