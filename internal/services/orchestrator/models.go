package orchestrator

import (
	"errors"

	"github.com/shopspring/decimal"

	"bankledger/internal/repos/ledger"
)

var (
	// ErrValidation rejects a malformed request before any state change.
	ErrValidation = errors.New("invalid transaction request")

	// ErrTransactionFailed reports a terminal FAILED attempt; the reason is
	// already persisted on the ledger record.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Failure reasons stored on the record and surfaced to callers. A caller
// seeing ReasonUnavailable may retry with a fresh transaction id; domain
// reasons are final.
const (
	ReasonInsufficientBalance = "insufficient balance"
	ReasonAccountNotFound     = "account not found"
	ReasonAccountNotActive    = "account not active"
	ReasonUnavailable         = "service temporarily unavailable"
	ReasonInternal            = "internal error"
)

// Request is the inbound transaction intent.
type Request struct {
	Type            ledger.Type
	AccountNumber   string
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
	ReferenceNumber string
}

// Statement aggregates completed money movement over a date window.
type Statement struct {
	AccountNumber    string
	StartDate        string
	EndDate          string
	Transactions     []ledger.Record
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TransactionCount int
}
