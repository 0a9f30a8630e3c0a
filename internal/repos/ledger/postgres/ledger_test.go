package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bankledger/internal/infra/pgtestutil"
	"bankledger/internal/repos/ledger"
)

func pendingRecord(id string) *ledger.Record {
	return &ledger.Record{
		TransactionID:   id,
		AccountNumber:   "ACC1",
		Type:            ledger.TypeDeposit,
		Amount:          decimal.RequireFromString("10.00"),
		Status:          ledger.StatusPending,
		TransactionDate: time.Now().UTC(),
	}
}

func TestLedger_InsertAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec := &ledger.Record{
		TransactionID:   "TXN100A",
		AccountNumber:   "ACC1",
		ToAccountNumber: "ACC2",
		Type:            ledger.TypeTransfer,
		Amount:          decimal.RequireFromString("33.40"),
		Status:          ledger.StatusPending,
		Description:     "rent share",
		ReferenceNumber: "REF-9",
		TransactionDate: time.Now().UTC(),
	}

	err := repo.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetByID(ctx, "TXN100A")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.ToAccountNumber != "ACC2" || got.Description != "rent share" || got.ReferenceNumber != "REF-9" {
		t.Fatalf("record mismatch: %+v", got)
	}
	if got.Status != ledger.StatusPending || got.FailureReason != "" {
		t.Fatalf("expected clean PENDING record, got: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("33.40")) {
		t.Fatalf("amount mismatch: %s", got.Amount)
	}
}

func TestLedger_InsertDuplicateID(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := repo.Insert(ctx, pendingRecord("TXN100B"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = repo.Insert(ctx, pendingRecord("TXN100B"))
	if !errors.Is(err, ledger.ErrDuplicateTransaction) {
		t.Fatalf("expected ErrDuplicateTransaction, got: %v", err)
	}
}

func TestLedger_GetNotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := repo.GetByID(ctx, "TXN-MISSING")
	if !errors.Is(err, ledger.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got: %v", err)
	}
}

// A terminal status can be written exactly once; any second write reports
// ErrAlreadyTerminal and leaves the row untouched.
func TestLedger_TerminalStatusIsMonotonic(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := repo.Insert(ctx, pendingRecord("TXN200A"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = repo.MarkFailed(ctx, "TXN200A", "insufficient balance")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	err = repo.MarkCompleted(ctx, "TXN200A")
	if !errors.Is(err, ledger.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got: %v", err)
	}

	err = repo.MarkFailed(ctx, "TXN200A", "other reason")
	if !errors.Is(err, ledger.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got: %v", err)
	}

	got, err := repo.GetByID(ctx, "TXN200A")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ledger.StatusFailed || got.FailureReason != "insufficient balance" {
		t.Fatalf("terminal record changed: %+v", got)
	}
}

func TestLedger_MarkCompletedMissingTransaction(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := repo.MarkCompleted(ctx, "TXN-MISSING")
	if !errors.Is(err, ledger.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got: %v", err)
	}
}

func TestLedger_ListByAccountPagination(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := pendingRecord("TXN300" + string(rune('A'+i)))
		rec.TransactionDate = base.Add(time.Duration(i) * time.Hour)

		err := repo.Insert(ctx, rec)
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	// Newest first.
	page, err := repo.ListByAccount(ctx, "ACC1", 2, 0)
	if err != nil {
		t.Fatalf("list page 0: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}
	if page[0].TransactionID != "TXN300E" || page[1].TransactionID != "TXN300D" {
		t.Fatalf("order mismatch: %s, %s", page[0].TransactionID, page[1].TransactionID)
	}

	last, err := repo.ListByAccount(ctx, "ACC1", 2, 4)
	if err != nil {
		t.Fatalf("list last page: %v", err)
	}
	if len(last) != 1 || last[0].TransactionID != "TXN300A" {
		t.Fatalf("last page mismatch: %+v", last)
	}
}

func TestLedger_ListByAccountBetween(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t, "transactions")
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	dates := []time.Time{
		base.AddDate(0, 0, -3),
		base,
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 10),
	}
	for i, d := range dates {
		rec := pendingRecord("TXN400" + string(rune('A'+i)))
		rec.TransactionDate = d

		err := repo.Insert(ctx, rec)
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := repo.ListByAccountBetween(ctx, "ACC1", base, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records in window, got %d", len(got))
	}
	if got[0].TransactionID != "TXN400B" || got[1].TransactionID != "TXN400C" {
		t.Fatalf("window order mismatch: %s, %s", got[0].TransactionID, got[1].TransactionID)
	}
}
