package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// NumberOfInstallments is how many debits repay an advance
	NumberOfInstallments = 12
	// InstallmentInterval is the gap between consecutive installments
	InstallmentInterval = 7 * 24 * time.Hour
)

// LoanState is the derived repayment state of a loan
type LoanState string

const (
	LoanStateOpen      LoanState = "open"
	LoanStateInArrears LoanState = "in_arrears"
	LoanStateSettled   LoanState = "settled"
)

// Loan represents an outstanding advance and its repayment plan.
// Installments are kept in schedule order and only ever appended to.
type Loan struct {
	Debt         decimal.Decimal `json:"debt"`
	GrantedOn    time.Time       `json:"granted_on"`
	SettledOn    *time.Time      `json:"settled_on,omitempty"`
	Installments []Transaction   `json:"installments"`
}

// Settled reports whether the completion marker has been set
func (l *Loan) Settled() bool {
	return l.SettledOn != nil
}

// DueOn returns the indexes of pending installments due on day, in schedule order
func (l *Loan) DueOn(day time.Time) []int {
	day = Day(day)
	var due []int
	for i, inst := range l.Installments {
		if inst.Pending() && Day(inst.Date).Equal(day) {
			due = append(due, i)
		}
	}
	return due
}

// HasPending reports whether any installment still awaits an attempt
func (l *Loan) HasPending() bool {
	for _, inst := range l.Installments {
		if inst.Pending() {
			return true
		}
	}
	return false
}

// LastDueDate returns the due date of the last entry in the schedule
func (l *Loan) LastDueDate() time.Time {
	if len(l.Installments) == 0 {
		return Day(l.GrantedOn)
	}
	return Day(l.Installments[len(l.Installments)-1].Date)
}

// Paid sums the installments that settled successfully
func (l *Loan) Paid() decimal.Decimal {
	paid := decimal.Zero
	for _, inst := range l.Installments {
		if inst.Status == StatusSuccess {
			paid = paid.Add(inst.Amount)
		}
	}
	return paid
}

// Outstanding is the part of the debt not yet repaid
func (l *Loan) Outstanding() decimal.Decimal {
	return l.Debt.Sub(l.Paid())
}

// State derives the loan state as seen on the reference day
func (l *Loan) State(day time.Time) LoanState {
	if l.Settled() {
		return LoanStateSettled
	}
	day = Day(day)
	for _, inst := range l.Installments {
		if inst.Status == StatusFail {
			return LoanStateInArrears
		}
		if inst.Pending() && Day(inst.Date).Before(day) {
			return LoanStateInArrears
		}
	}
	return LoanStateOpen
}
