package service

import (
	"errors"

	"github.com/Dan9191/advance-service/internal/repository"
)

var (
	// ErrAccountNotFound is returned when the destination of an advance does not exist.
	ErrAccountNotFound = repository.ErrAccountNotFound

	// ErrTransactionRejected is returned when the rail refuses a transfer or reports it failed.
	ErrTransactionRejected = errors.New("transaction rejected")

	// ErrLoanOutstanding is returned when an advance is requested while a loan is still open.
	ErrLoanOutstanding = errors.New("account has an outstanding loan")

	// ErrInvalidAmount is returned for advances too small to split into installments.
	ErrInvalidAmount = errors.New("invalid advance amount")

	// ErrNoLoan is returned when loan details are requested for an account without one.
	ErrNoLoan = errors.New("account has no loan")
)
