package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankledger/internal/accountclient"
	"bankledger/internal/events"
	"bankledger/internal/infra/metrics"
	"bankledger/internal/repos/ledger"
)

// Service drives each transaction through its state machine:
// insert PENDING, run the balance mutations in order, then write exactly
// one terminal status. A failed attempt is never resumed; retries mint a
// fresh transaction id.
type Service struct {
	ledger    ledger.Ledger
	client    accountclient.Client
	publisher events.Publisher
	metrics   *metrics.Collector
}

func New(ledgerRepo ledger.Ledger, client accountclient.Client, publisher events.Publisher, collector *metrics.Collector) *Service {
	return &Service{
		ledger:    ledgerRepo,
		client:    client,
		publisher: publisher,
		metrics:   collector,
	}
}

// Process runs one transaction attempt end to end. The PENDING record is
// durable before any balance is touched, so a crash mid-flight leaves an
// auditable row rather than silent money movement.
func (s *Service) Process(ctx context.Context, req Request) (*ledger.Record, error) {
	started := time.Now()

	err := validate(req)
	if err != nil {
		return nil, err
	}

	rec := &ledger.Record{
		TransactionID:   newTransactionID(),
		AccountNumber:   req.AccountNumber,
		ToAccountNumber: req.ToAccountNumber,
		Type:            req.Type,
		Amount:          req.Amount,
		Status:          ledger.StatusPending,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
		TransactionDate: time.Now().UTC(),
	}

	err = s.ledger.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	err = s.dispatch(ctx, rec)
	if err != nil {
		reason := failureReason(err)

		ferr := s.finalize(ctx, rec, ledger.StatusFailed, reason)
		if ferr != nil {
			slog.Error("write terminal status",
				"transaction_id", rec.TransactionID, "status", string(ledger.StatusFailed), "error", ferr)
		}

		s.metrics.RecordTransaction(string(rec.Type), string(ledger.StatusFailed), time.Since(started))

		slog.Warn("transaction failed",
			"transaction_id", rec.TransactionID,
			"type", string(rec.Type),
			"reason", reason,
			"error", err,
		)

		return nil, fmt.Errorf("%w: %s", ErrTransactionFailed, reason)
	}

	err = s.finalize(ctx, rec, ledger.StatusCompleted, "")
	if err != nil {
		// The balance legs are applied but the record is still PENDING.
		// Reporting success here would hide an un-audited attempt, so the
		// caller gets the error and the row stays visible for reconciliation.
		return nil, fmt.Errorf("persist transaction outcome: %w", err)
	}

	s.metrics.RecordTransaction(string(rec.Type), string(ledger.StatusCompleted), time.Since(started))

	slog.Info("transaction completed",
		"transaction_id", rec.TransactionID,
		"type", string(rec.Type),
		"amount", rec.Amount.String(),
	)

	return rec, nil
}

// dispatch runs the balance mutations for the transaction type. A transfer
// debits the source first and only then credits the destination; the two
// legs are separate single-row operations, never one distributed lock.
func (s *Service) dispatch(ctx context.Context, rec *ledger.Record) error {
	switch rec.Type {
	case ledger.TypeDeposit:
		return s.client.UpdateBalance(ctx, rec.AccountNumber, rec.Amount, accountclient.OpCredit)

	case ledger.TypeWithdrawal:
		return s.client.UpdateBalance(ctx, rec.AccountNumber, rec.Amount, accountclient.OpDebit)

	case ledger.TypeTransfer:
		err := s.client.UpdateBalance(ctx, rec.AccountNumber, rec.Amount, accountclient.OpDebit)
		if err != nil {
			return err
		}

		err = s.client.UpdateBalance(ctx, rec.ToAccountNumber, rec.Amount, accountclient.OpCredit)
		if err != nil {
			// The debit already committed on the account service. There is
			// no distributed rollback; the record carries the gap for the
			// reconciliation process instead of hiding it.
			return &partialTransferError{cause: err}
		}

		return nil

	default:
		return fmt.Errorf("unsupported transaction type %q", rec.Type)
	}
}

// finalize writes the terminal status and publishes the transaction event.
// The ledger write comes first and is load-bearing: if it fails, the row is
// still PENDING, so no event goes out and the error is returned instead of
// pretending the attempt reached a terminal state.
func (s *Service) finalize(ctx context.Context, rec *ledger.Record, status ledger.Status, reason string) error {
	var err error
	if status == ledger.StatusFailed {
		err = s.ledger.MarkFailed(ctx, rec.TransactionID, reason)
	} else {
		err = s.ledger.MarkCompleted(ctx, rec.TransactionID)
	}

	if err != nil {
		return fmt.Errorf("mark %s: %w", status, err)
	}

	rec.Status = status
	rec.FailureReason = reason

	eventType := events.TransactionCompleted
	if status == ledger.StatusFailed {
		eventType = events.TransactionFailed
	}

	err = s.publisher.PublishTransactionEvent(ctx, events.TransactionEvent{
		EventType:     eventType,
		TransactionID: rec.TransactionID,
		AccountNumber: rec.AccountNumber,
		Amount:        rec.Amount,
		Type:          string(rec.Type),
		Status:        string(status),
		Timestamp:     time.Now().UnixMilli(),
	})
	if err != nil {
		s.metrics.RecordPublishError()
		slog.Error("publish transaction event",
			"transaction_id", rec.TransactionID, "event_type", eventType, "error", err)
	}

	return nil
}

func validate(req Request) error {
	if req.AccountNumber == "" {
		return fmt.Errorf("%w: account number is required", ErrValidation)
	}

	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	switch req.Type {
	case ledger.TypeDeposit, ledger.TypeWithdrawal:
		if req.ToAccountNumber != "" {
			return fmt.Errorf("%w: destination account is only valid for transfers", ErrValidation)
		}
	case ledger.TypeTransfer:
		if req.ToAccountNumber == "" {
			return fmt.Errorf("%w: transfer requires a destination account", ErrValidation)
		}

		if req.ToAccountNumber == req.AccountNumber {
			return fmt.Errorf("%w: transfer requires a distinct destination account", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unsupported transaction type %q", ErrValidation, req.Type)
	}

	return nil
}

// partialTransferError marks a credit-leg failure after a committed debit.
type partialTransferError struct {
	cause error
}

func (e *partialTransferError) Error() string {
	return fmt.Sprintf("credit leg failed after successful debit: %v", e.cause)
}

func (e *partialTransferError) Unwrap() error { return e.cause }

func failureReason(err error) string {
	var partial *partialTransferError
	if errors.As(err, &partial) {
		return "transfer partially applied: debit succeeded, " + failureReason(partial.cause)
	}

	switch {
	case errors.Is(err, accountclient.ErrInsufficientBalance):
		return ReasonInsufficientBalance
	case errors.Is(err, accountclient.ErrAccountNotFound):
		return ReasonAccountNotFound
	case errors.Is(err, accountclient.ErrAccountNotActive):
		return ReasonAccountNotActive
	case errors.Is(err, accountclient.ErrServiceUnavailable):
		return ReasonUnavailable
	default:
		return ReasonInternal
	}
}

// GetTransaction returns the record for one attempt.
func (s *Service) GetTransaction(ctx context.Context, transactionID string) (*ledger.Record, error) {
	return s.ledger.GetByID(ctx, transactionID)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AccountTransactions lists an account's attempts, newest first.
func (s *Service) AccountTransactions(ctx context.Context, accountNumber string, page, size int) ([]ledger.Record, error) {
	if size <= 0 {
		size = defaultPageSize
	}

	if size > maxPageSize {
		size = maxPageSize
	}

	if page < 0 {
		page = 0
	}

	return s.ledger.ListByAccount(ctx, accountNumber, size, page*size)
}

// GetStatement aggregates completed movement over the window: deposits on
// one side, withdrawals and transfer debits on the other.
func (s *Service) GetStatement(ctx context.Context, accountNumber string, from, to time.Time) (*Statement, error) {
	recs, err := s.ledger.ListByAccountBetween(ctx, accountNumber, from, to)
	if err != nil {
		return nil, fmt.Errorf("load statement window: %w", err)
	}

	st := &Statement{
		AccountNumber:    accountNumber,
		StartDate:        from.Format(time.RFC3339),
		EndDate:          to.Format(time.RFC3339),
		Transactions:     recs,
		TransactionCount: len(recs),
	}

	for _, rec := range recs {
		if rec.Status != ledger.StatusCompleted {
			continue
		}

		switch rec.Type {
		case ledger.TypeDeposit:
			st.TotalDeposits = st.TotalDeposits.Add(rec.Amount)
		case ledger.TypeWithdrawal, ledger.TypeTransfer:
			st.TotalWithdrawals = st.TotalWithdrawals.Add(rec.Amount)
		}
	}

	return st, nil
}

func newTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), suffix)
}
