package accountapi

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

	"bankledger/internal/repos/accounts"
	"bankledger/internal/services/mutator"
)

// AccountService is the slice of the mutator the handlers need.
type AccountService interface {
	OpenAccount(ctx context.Context, params mutator.OpenAccountParams) (*accounts.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (*accounts.Account, error)
	CustomerAccounts(ctx context.Context, customerID int64) ([]accounts.Account, error)
	ApplyDelta(ctx context.Context, accountNumber string, amount decimal.Decimal, op mutator.Operation) (decimal.Decimal, error)
}

// HandlerProvider exposes the account endpoints over an AccountService.
type HandlerProvider struct {
	svc AccountService
}

func NewHandler(svc AccountService) *HandlerProvider {
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

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("empty body")
	}

	return err
}

// --- Wire types ---

type openAccountRequest struct {
	CustomerID     int64           `json:"customerId"`
	AccountType    string          `json:"accountType"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	Currency       string          `json:"currency"`
}

type balanceUpdateRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Operation string          `json:"operation"`
}

type accountResponse struct {
	AccountNumber string          `json:"accountNumber"`
	CustomerID    int64           `json:"customerId"`
	AccountType   string          `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toAccountResponse(acct *accounts.Account) accountResponse {
	return accountResponse{
		AccountNumber: acct.AccountNumber,
		CustomerID:    acct.CustomerID,
		AccountType:   acct.AccountType,
		Balance:       acct.Balance,
		Status:        string(acct.Status),
		Currency:      acct.Currency,
		CreatedAt:     acct.CreatedAt,
		UpdatedAt:     acct.UpdatedAt,
	}
}

type balanceUpdateResponse struct {
	AccountNumber string          `json:"accountNumber"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	Operation     string          `json:"operation"`
}

// --- Handlers ---

// OpenAccountHandler handles POST /api/accounts
func (h *HandlerProvider) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	if req.CustomerID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "customerId must be positive")
		return
	}

	if req.AccountType == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "accountType is required")
		return
	}

	acct, err := h.svc.OpenAccount(r.Context(), mutator.OpenAccountParams{
		CustomerID:     req.CustomerID,
		AccountType:    req.AccountType,
		InitialDeposit: req.InitialDeposit,
		Currency:       req.Currency,
	})
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acct))
}

// GetAccountHandler handles GET /api/accounts/{accountNumber}
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	acct, err := h.svc.GetAccount(r.Context(), accountNumber)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

// CustomerAccountsHandler handles GET /api/accounts/customer/{customerId}
func (h *HandlerProvider) CustomerAccountsHandler(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerId"), 10, 64)
	if err != nil || customerID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid customerId in path")
		return
	}

	accts, err := h.svc.CustomerAccounts(r.Context(), customerID)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	resp := make([]accountResponse, 0, len(accts))
	for i := range accts {
		resp = append(resp, toAccountResponse(&accts[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateBalanceHandler handles PUT /api/accounts/{accountNumber}/balance
func (h *HandlerProvider) UpdateBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")

	var req balanceUpdateRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	newBalance, err := h.svc.ApplyDelta(r.Context(), accountNumber, req.Amount, mutator.Operation(req.Operation))
	if err != nil {
		h.writeAccountError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceUpdateResponse{
		AccountNumber: accountNumber,
		NewBalance:    newBalance,
		Operation:     req.Operation,
	})
}

func (h *HandlerProvider) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	case errors.Is(err, accounts.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "insufficient balance")
	case errors.Is(err, accounts.ErrAccountNotActive):
		writeError(w, http.StatusConflict, "ACCOUNT_NOT_ACTIVE", "account is not active")
	case errors.Is(err, accounts.ErrAccountExists):
		writeError(w, http.StatusConflict, "ACCOUNT_EXISTS", "account already exists")
	case errors.Is(err, mutator.ErrInvalidAmount), errors.Is(err, mutator.ErrInvalidOperation):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		slog.Error("account request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
