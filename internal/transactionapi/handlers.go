package transactionapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bankledger/internal/repos/ledger"
	"bankledger/internal/services/orchestrator"
)

// TransactionService is the slice of the orchestrator the handlers need.
type TransactionService interface {
	Process(ctx context.Context, req orchestrator.Request) (*ledger.Record, error)
	GetTransaction(ctx context.Context, transactionID string) (*ledger.Record, error)
	AccountTransactions(ctx context.Context, accountNumber string, page, size int) ([]ledger.Record, error)
	GetStatement(ctx context.Context, accountNumber string, from, to time.Time) (*orchestrator.Statement, error)
}

// HandlerProvider exposes the transaction endpoints over a TransactionService.
type HandlerProvider struct {
	svc TransactionService
}

func NewHandler(svc TransactionService) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("encode json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"code": code, "error": msg})
}

// --- Wire types ---

type createTransactionRequest struct {
	Type            string          `json:"type"`
	AccountNumber   string          `json:"accountNumber"`
	ToAccountNumber string          `json:"toAccountNumber,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
}

type transactionResponse struct {
	TransactionID   string          `json:"transactionId"`
	AccountNumber   string          `json:"accountNumber"`
	ToAccountNumber string          `json:"toAccountNumber,omitempty"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	Description     string          `json:"description,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	FailureReason   string          `json:"failureReason,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
}

func toTransactionResponse(rec *ledger.Record) transactionResponse {
	return transactionResponse{
		TransactionID:   rec.TransactionID,
		AccountNumber:   rec.AccountNumber,
		ToAccountNumber: rec.ToAccountNumber,
		Type:            string(rec.Type),
		Amount:          rec.Amount,
		Status:          string(rec.Status),
		Description:     rec.Description,
		ReferenceNumber: rec.ReferenceNumber,
		FailureReason:   rec.FailureReason,
		TransactionDate: rec.TransactionDate,
	}
}

type statementResponse struct {
	AccountNumber    string                `json:"accountNumber"`
	StartDate        string                `json:"startDate"`
	EndDate          string                `json:"endDate"`
	Transactions     []transactionResponse `json:"transactions"`
	TotalDeposits    decimal.Decimal       `json:"totalDeposits"`
	TotalWithdrawals decimal.Decimal       `json:"totalWithdrawals"`
	TransactionCount int                   `json:"transactionCount"`
}

// --- Handlers ---

// CreateTransactionHandler handles POST /api/transactions
func (h *HandlerProvider) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req createTransactionRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&req)
	if err != nil {
		msg := "invalid JSON"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		}

		writeError(w, http.StatusBadRequest, "VALIDATION", msg)

		return
	}

	rec, err := h.svc.Process(r.Context(), orchestrator.Request{
		Type:            ledger.Type(req.Type),
		AccountNumber:   req.AccountNumber,
		ToAccountNumber: req.ToAccountNumber,
		Amount:          req.Amount,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrValidation):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, orchestrator.ErrTransactionFailed):
			writeError(w, http.StatusUnprocessableEntity, "TRANSACTION_FAILED", err.Error())
		default:
			slog.Error("create transaction", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		}

		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(rec))
}

// GetTransactionHandler handles GET /api/transactions/{transactionId}
func (h *HandlerProvider) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetTransaction(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
			return
		}

		slog.Error("get transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")

		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(rec))
}

// AccountTransactionsHandler handles GET /api/transactions/account/{accountNumber}
func (h *HandlerProvider) AccountTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 0)

	recs, err := h.svc.AccountTransactions(r.Context(), chi.URLParam(r, "accountNumber"), page, size)
	if err != nil {
		slog.Error("list account transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")

		return
	}

	resp := make([]transactionResponse, 0, len(recs))
	for i := range recs {
		resp = append(resp, toTransactionResponse(&recs[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// StatementHandler handles GET /api/transactions/statement/{accountNumber}
func (h *HandlerProvider) StatementHandler(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("startDate"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid startDate")
		return
	}

	to, err := parseDate(r.URL.Query().Get("endDate"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid endDate")
		return
	}

	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "VALIDATION", "endDate precedes startDate")
		return
	}

	st, err := h.svc.GetStatement(r.Context(), chi.URLParam(r, "accountNumber"), from, to)
	if err != nil {
		slog.Error("build statement", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")

		return
	}

	resp := statementResponse{
		AccountNumber:    st.AccountNumber,
		StartDate:        st.StartDate,
		EndDate:          st.EndDate,
		Transactions:     make([]transactionResponse, 0, len(st.Transactions)),
		TotalDeposits:    st.TotalDeposits,
		TotalWithdrawals: st.TotalWithdrawals,
		TransactionCount: st.TransactionCount,
	}
	for i := range st.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(&st.Transactions[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return n
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("date required")
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}

	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}

	return t, nil
}
