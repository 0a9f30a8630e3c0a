// Package accountclient is the transaction service's view of the account
// service's balance-mutation endpoint. It owns the sentinel errors the
// orchestrator branches on; wire codes map back onto them here.
package accountclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountNotActive    = errors.New("account not active")
	ErrServiceUnavailable  = errors.New("account service unavailable")
)

type Operation string

const (
	OpCredit Operation = "CREDIT"
	OpDebit  Operation = "DEBIT"
)

// Client applies one signed balance change to one account on the remote
// account service.
type Client interface {
	UpdateBalance(ctx context.Context, accountNumber string, amount decimal.Decimal, op Operation) error
}

type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTP builds a client with a hard per-request timeout; a call that
// exceeds it is a failure, never an indefinite wait.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

type balanceUpdateRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Operation Operation       `json:"operation"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (c *HTTPClient) UpdateBalance(ctx context.Context, accountNumber string, amount decimal.Decimal, op Operation) error {
	body, err := json.Marshal(balanceUpdateRequest{Amount: amount, Operation: op})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/accounts/%s/balance", c.baseURL, accountNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("call account service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("account service returned %d", resp.StatusCode)
	}

	switch er.Code {
	case "ACCOUNT_NOT_FOUND":
		return ErrAccountNotFound
	case "INSUFFICIENT_BALANCE":
		return ErrInsufficientBalance
	case "ACCOUNT_NOT_ACTIVE":
		return ErrAccountNotActive
	default:
		return fmt.Errorf("account service returned %d: %s", resp.StatusCode, er.Error)
	}
}
