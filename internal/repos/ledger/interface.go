package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrAlreadyTerminal      = errors.New("transaction already terminal")
)

type Type string

const (
	TypeDeposit    Type = "DEPOSIT"
	TypeWithdrawal Type = "WITHDRAWAL"
	TypeTransfer   Type = "TRANSFER"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Record is one transaction attempt. Status moves PENDING -> COMPLETED or
// PENDING -> FAILED exactly once; rows are never deleted.
type Record struct {
	TransactionID   string
	AccountNumber   string
	ToAccountNumber string // set for transfers only
	Type            Type
	Amount          decimal.Decimal
	Status          Status
	Description     string
	ReferenceNumber string
	FailureReason   string
	TransactionDate time.Time
}

type Ledger interface {
	Insert(ctx context.Context, rec *Record) error
	MarkCompleted(ctx context.Context, transactionID string) error
	MarkFailed(ctx context.Context, transactionID, reason string) error
	GetByID(ctx context.Context, transactionID string) (*Record, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]Record, error)
	ListByAccountBetween(ctx context.Context, accountNumber string, from, to time.Time) ([]Record, error)
}
