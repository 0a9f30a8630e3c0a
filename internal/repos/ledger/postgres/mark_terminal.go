package ledger

import (
	"context"
	"fmt"

	"bankledger/internal/repos/ledger"
)

// Terminal updates only ever move a PENDING row; the WHERE clause is what
// makes the status write-once.

func (r *ledgerRepo) MarkCompleted(ctx context.Context, transactionID string) error {
	return r.markTerminal(ctx, transactionID, ledger.StatusCompleted, "")
}

func (r *ledgerRepo) MarkFailed(ctx context.Context, transactionID, reason string) error {
	return r.markTerminal(ctx, transactionID, ledger.StatusFailed, reason)
}

func (r *ledgerRepo) markTerminal(ctx context.Context, transactionID string, status ledger.Status, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, failure_reason = $3
		WHERE transaction_id = $1
		  AND status = 'PENDING'
	`, transactionID, string(status), nullable(reason))
	if err != nil {
		return fmt.Errorf("mark %s: %w", status, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return ledger.ErrAlreadyTerminal
	}

	return nil
}
