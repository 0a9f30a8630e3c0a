package accounts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/internal/repos/accounts"
)

func (r *accountsRepo) SaveBalance(tx *sql.Tx, accountNumber string, balance decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = $2, updated_at = $3
		WHERE account_number = $1
	`, accountNumber, balance, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}
