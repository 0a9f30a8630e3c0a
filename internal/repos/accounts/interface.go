package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotActive    = errors.New("account not active")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusFrozen Status = "FROZEN"
	StatusClosed Status = "CLOSED"
)

// Account is the durable balance record. The balance is mutated only
// through the mutator service while the row is locked.
type Account struct {
	AccountNumber string
	CustomerID    int64
	AccountType   string
	Balance       decimal.Decimal
	Status        Status
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Accounts interface {
	Create(tx *sql.Tx, acct *Account) error
	Get(ctx context.Context, accountNumber string) (*Account, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Account, error)
	LockForUpdate(tx *sql.Tx, accountNumber string) (*Account, error)
	SaveBalance(tx *sql.Tx, accountNumber string, balance decimal.Decimal) error
}
