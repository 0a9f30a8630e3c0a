package mutator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bankledger/internal/events"
	"bankledger/internal/infra/metrics"
	"bankledger/internal/infra/pgutils"
	"bankledger/internal/repos/accounts"
)

const cacheTTL = 30 * time.Second

// Service is the only code path that changes an account balance.
type Service struct {
	db        *sql.DB
	accounts  accounts.Accounts
	publisher events.Publisher
	metrics   *metrics.Collector
	cache     *accountCache
}

func New(db *sql.DB, repo accounts.Accounts, publisher events.Publisher, collector *metrics.Collector) *Service {
	return &Service{
		db:        db,
		accounts:  repo,
		publisher: publisher,
		metrics:   collector,
		cache:     newAccountCache(cacheTTL),
	}
}

// ApplyDelta applies one signed balance change to one account:
//
// 1) Lock the account row (FOR UPDATE), single row, never two.
// 2) Re-read balance and status under the lock.
// 3) Reject if not ACTIVE or if a debit would go below zero.
// 4) Persist the new balance and commit, releasing the lock.
// 5) Invalidate the read cache and publish BALANCE_UPDATED.
//
// The lock is never held across a network call; the event goes out only
// after commit, so a fresh lock always observes the persisted value before
// the event is externally visible.
func (s *Service) ApplyDelta(ctx context.Context, accountNumber string, amount decimal.Decimal, op Operation) (decimal.Decimal, error) {
	started := time.Now()

	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	delta := amount

	switch op {
	case OpCredit:
	case OpDebit:
		delta = amount.Neg()
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidOperation, op)
	}

	var (
		newBalance decimal.Decimal
		customerID int64
		currency   string
	)

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		acct, err := s.accounts.LockForUpdate(tx, accountNumber)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		if acct.Status != accounts.StatusActive {
			return fmt.Errorf("account %s is %s: %w", accountNumber, acct.Status, accounts.ErrAccountNotActive)
		}

		newBalance = acct.Balance.Add(delta)
		if newBalance.IsNegative() {
			return fmt.Errorf("balance %s short of %s: %w", acct.Balance, amount, accounts.ErrInsufficientBalance)
		}

		customerID = acct.CustomerID
		currency = acct.Currency

		err = s.accounts.SaveBalance(tx, accountNumber, newBalance)
		if err != nil {
			return fmt.Errorf("save balance: %w", err)
		}

		return nil
	})
	if err != nil {
		s.metrics.RecordMutation("failed", time.Since(started))
		return decimal.Zero, err
	}

	s.cache.invalidate(accountNumber)

	s.publishAccountEvent(ctx, events.BalanceUpdated, accountNumber, customerID, newBalance)
	s.metrics.RecordMutation("applied", time.Since(started))
	s.metrics.SetAccountBalance(accountNumber, currency, newBalance.InexactFloat64())

	slog.Info("balance updated",
		"account_number", accountNumber,
		"operation", string(op),
		"amount", amount.String(),
		"new_balance", newBalance.String(),
	)

	return newBalance, nil
}

// OpenAccount creates the balance record. Mutations afterwards go through
// ApplyDelta exclusively.
func (s *Service) OpenAccount(ctx context.Context, params OpenAccountParams) (*accounts.Account, error) {
	if params.InitialDeposit.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if params.Currency == "" {
		return nil, fmt.Errorf("currency is required")
	}

	now := time.Now().UTC()
	acct := &accounts.Account{
		AccountNumber: newAccountNumber(),
		CustomerID:    params.CustomerID,
		AccountType:   params.AccountType,
		Balance:       params.InitialDeposit,
		Status:        accounts.StatusActive,
		Currency:      params.Currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.accounts.Create(tx, acct)
	})
	if err != nil {
		return nil, fmt.Errorf("open account: %w", err)
	}

	s.publishAccountEvent(ctx, events.AccountCreated, acct.AccountNumber, acct.CustomerID, acct.Balance)

	slog.Info("account opened", "account_number", acct.AccountNumber, "customer_id", acct.CustomerID)

	return acct, nil
}

// GetAccount reads through the TTL cache. The epoch is captured before the
// store read so a mutation committing in between keeps the result out of
// the cache.
func (s *Service) GetAccount(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	acct, ok := s.cache.get(accountNumber)
	if ok {
		return acct, nil
	}

	epoch := s.cache.epoch(accountNumber)

	acct, err := s.accounts.Get(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	s.cache.put(acct, epoch)

	return acct, nil
}

func (s *Service) CustomerAccounts(ctx context.Context, customerID int64) ([]accounts.Account, error) {
	return s.accounts.ListByCustomer(ctx, customerID)
}

func (s *Service) publishAccountEvent(ctx context.Context, eventType, accountNumber string, customerID int64, balance decimal.Decimal) {
	err := s.publisher.PublishAccountEvent(ctx, events.AccountEvent{
		EventType:     eventType,
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		Balance:       balance,
		Timestamp:     time.Now().UnixMilli(),
	})
	if err != nil {
		// The mutation is already committed; event delivery must not undo it.
		s.metrics.RecordPublishError()
		slog.Error("publish account event", "event_type", eventType, "account_number", accountNumber, "error", err)
	}
}

func newAccountNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ACC%d%s", time.Now().UnixMilli(), suffix)
}
