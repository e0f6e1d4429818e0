package models

import "github.com/shopspring/decimal"

// Account is a bank account that can hold at most one loan
type Account struct {
	ID      int64           `json:"id"`
	Balance decimal.Decimal `json:"balance"`
	Loan    *Loan           `json:"loan,omitempty"`
}

// HasOpenLoan reports whether the account carries a loan that is not yet settled
func (a *Account) HasOpenLoan() bool {
	return a.Loan != nil && !a.Loan.Settled()
}

// Clone returns a deep copy of the account and its loan schedule
func (a *Account) Clone() *Account {
	c := *a
	if a.Loan != nil {
		loan := *a.Loan
		loan.Installments = append([]Transaction(nil), a.Loan.Installments...)
		if a.Loan.SettledOn != nil {
			settled := *a.Loan.SettledOn
			loan.SettledOn = &settled
		}
		c.Loan = &loan
	}
	return &c
}
