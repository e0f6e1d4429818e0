package repository

import (
	"context"

	"github.com/Dan9191/advance-service/internal/models"
)

// Store is the ledger store used by the advance engine and the repayment scheduler
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	// UpdateAccount upserts the account together with its loan schedule.
	UpdateAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	// AddTransaction inserts a transaction record and sets its ID.
	AddTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}
