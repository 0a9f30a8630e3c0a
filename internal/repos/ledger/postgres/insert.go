package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"bankledger/internal/repos/ledger"
)

func (r *ledgerRepo) Insert(ctx context.Context, rec *ledger.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(transaction_id, account_number, to_account_number, type, amount,
			 status, description, reference_number, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.TransactionID, rec.AccountNumber, nullable(rec.ToAccountNumber),
		string(rec.Type), rec.Amount, string(rec.Status),
		nullable(rec.Description), nullable(rec.ReferenceNumber), rec.TransactionDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ledger.ErrDuplicateTransaction
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
