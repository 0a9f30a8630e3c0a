package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"bankledger/internal/repos/accounts"
)

// LockForUpdate acquires the row lock for exactly one account and returns
// the current record. The lock is released when the surrounding tx ends;
// callers must not hold it across network calls.
func (r *accountsRepo) LockForUpdate(tx *sql.Tx, accountNumber string) (*accounts.Account, error) {
	acct := new(accounts.Account)

	err := tx.QueryRow(`
		SELECT account_number, customer_id, account_type, balance, status, currency, created_at, updated_at
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`, accountNumber).Scan(
		&acct.AccountNumber, &acct.CustomerID, &acct.AccountType, &acct.Balance,
		&acct.Status, &acct.Currency, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock account: %w", err)
	}

	return acct, nil
}
