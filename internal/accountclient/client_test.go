package accountclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestUpdateBalanceSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/accounts/ACC1/balance", r.URL.Path)

		var req balanceUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, OpDebit, req.Operation)
		require.True(t, req.Amount.Equal(decimal.NewFromFloat(40.00)))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	err := c.UpdateBalance(context.Background(), "ACC1", decimal.NewFromFloat(40.00), OpDebit)
	require.NoError(t, err)
}

func TestUpdateBalanceMapsErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		code    string
		wantErr error
	}{
		{"not_found", http.StatusNotFound, "ACCOUNT_NOT_FOUND", ErrAccountNotFound},
		{"insufficient", http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", ErrInsufficientBalance},
		{"not_active", http.StatusConflict, "ACCOUNT_NOT_ACTIVE", ErrAccountNotActive},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(errorResponse{Code: tt.code, Error: tt.name})
			}))
			defer srv.Close()

			c := NewHTTP(srv.URL, time.Second)

			err := c.UpdateBalance(context.Background(), "ACC1", decimal.NewFromInt(10), OpCredit)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateBalanceUnknownErrorIsGeneric(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Code: "INTERNAL", Error: "boom"})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)

	err := c.UpdateBalance(context.Background(), "ACC1", decimal.NewFromInt(10), OpCredit)
	require.Error(t, err)
	require.False(t, isDomainError(err))
}

func TestUpdateBalanceTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTP(srv.URL, time.Second)

	err := c.UpdateBalance(context.Background(), "ACC1", decimal.NewFromInt(10), OpCredit)
	require.Error(t, err)
}
