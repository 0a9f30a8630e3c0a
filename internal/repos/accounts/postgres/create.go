package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"bankledger/internal/repos/accounts"
)

func (r *accountsRepo) Create(tx *sql.Tx, acct *accounts.Account) error {
	_, err := tx.Exec(`
		INSERT INTO accounts (account_number, customer_id, account_type, balance, status, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, acct.AccountNumber, acct.CustomerID, acct.AccountType, acct.Balance,
		string(acct.Status), acct.Currency, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return accounts.ErrAccountExists
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}
