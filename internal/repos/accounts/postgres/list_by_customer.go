package accounts

import (
	"context"
	"fmt"

	"bankledger/internal/repos/accounts"
)

func (r *accountsRepo) ListByCustomer(ctx context.Context, customerID int64) ([]accounts.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_number, customer_id, account_type, balance, status, currency, created_at, updated_at
		FROM accounts
		WHERE customer_id = $1
		ORDER BY created_at
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []accounts.Account

	for rows.Next() {
		var acct accounts.Account

		err = rows.Scan(
			&acct.AccountNumber, &acct.CustomerID, &acct.AccountType, &acct.Balance,
			&acct.Status, &acct.Currency, &acct.CreatedAt, &acct.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		out = append(out, acct)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return out, nil
}
