package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccountID is the reserved account that funds advances and receives repayments
const BankAccountID int64 = 0

// Direction tells which way money moves relative to the destination account
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Status is the settlement outcome of a transaction. The zero value means not yet attempted.
type Status string

const (
	StatusPending Status = ""
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// Transaction represents a single money movement
type Transaction struct {
	ID            int64           `json:"id"`      // assigned by the store
	RailID        int64           `json:"rail_id"` // assigned by the payment rail, 0 until accepted
	Amount        decimal.Decimal `json:"amount"`
	Direction     Direction       `json:"direction"`
	Date          time.Time       `json:"date"`
	SourceID      int64           `json:"source_id"`
	DestinationID int64           `json:"destination_id"`
	Status        Status          `json:"status"`
}

// Pending reports whether the transaction has not been attempted yet
func (t Transaction) Pending() bool {
	return t.Status == StatusPending
}

// Day truncates t to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const dayLayout = "2006-01-02"

// FormatDay renders a calendar date as YYYY-MM-DD
func FormatDay(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD calendar date
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}
