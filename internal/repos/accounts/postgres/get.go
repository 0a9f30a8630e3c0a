package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bankledger/internal/repos/accounts"
)

func (r *accountsRepo) Get(ctx context.Context, accountNumber string) (*accounts.Account, error) {
	acct := new(accounts.Account)

	err := r.db.QueryRowContext(ctx, `
		SELECT account_number, customer_id, account_type, balance, status, currency, created_at, updated_at
		FROM accounts
		WHERE account_number = $1
	`, accountNumber).Scan(
		&acct.AccountNumber, &acct.CustomerID, &acct.AccountType, &acct.Balance,
		&acct.Status, &acct.Currency, &acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account: %w", err)
	}

	return acct, nil
}
