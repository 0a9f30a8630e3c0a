package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bankledger/internal/repos/ledger"
)

func (r *ledgerRepo) GetByID(ctx context.Context, transactionID string) (*ledger.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM transactions
		WHERE transaction_id = $1
	`, transactionID)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound
		}

		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return rec, nil
}
