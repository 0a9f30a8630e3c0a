package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bankledger/internal/repos/ledger"
)

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]ledger.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transactions
		WHERE account_number = $1
		ORDER BY transaction_date DESC, transaction_id
		LIMIT $2 OFFSET $3
	`, accountNumber, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return collect(rows)
}

func (r *ledgerRepo) ListByAccountBetween(ctx context.Context, accountNumber string, from, to time.Time) ([]ledger.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transactions
		WHERE account_number = $1
		  AND transaction_date BETWEEN $2 AND $3
		ORDER BY transaction_date
	`, accountNumber, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}

	return collect(rows)
}

func collect(rows *sql.Rows) ([]ledger.Record, error) {
	defer rows.Close()

	var out []ledger.Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		out = append(out, *rec)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
