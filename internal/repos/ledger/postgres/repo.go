package ledger

import (
	"database/sql"

	"bankledger/internal/repos/ledger"
)

var _ ledger.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

const recordColumns = `
	transaction_id, account_number, COALESCE(to_account_number, ''), type, amount,
	status, COALESCE(description, ''), COALESCE(reference_number, ''),
	COALESCE(failure_reason, ''), transaction_date`

func scanRecord(row interface{ Scan(...any) error }) (*ledger.Record, error) {
	rec := new(ledger.Record)

	err := row.Scan(
		&rec.TransactionID, &rec.AccountNumber, &rec.ToAccountNumber, &rec.Type,
		&rec.Amount, &rec.Status, &rec.Description, &rec.ReferenceNumber,
		&rec.FailureReason, &rec.TransactionDate,
	)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}
