package mutator

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Operation string

const (
	OpCredit Operation = "CREDIT"
	OpDebit  Operation = "DEBIT"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidAmount    = errors.New("amount must be positive")
)

// OpenAccountParams carries the account-opening request.
type OpenAccountParams struct {
	CustomerID     int64
	AccountType    string
	InitialDeposit decimal.Decimal
	Currency       string
}
