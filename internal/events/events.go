// Package events carries the domain event contract shared with the
// notification consumers. Events are handed to Kafka at the commit point
// and never persisted by the producing service.
package events

import (
	"github.com/shopspring/decimal"
)

const (
	TopicAccountEvents     = "account-events"
	TopicTransactionEvents = "transaction-events"
)

const (
	AccountCreated       = "ACCOUNT_CREATED"
	BalanceUpdated       = "BALANCE_UPDATED"
	TransactionCompleted = "TRANSACTION_COMPLETED"
	TransactionFailed    = "TRANSACTION_FAILED"
)

// AccountEvent is published on account-events, keyed by account number so
// per-account ordering holds within a partition.
type AccountEvent struct {
	EventType     string          `json:"eventType"`
	AccountNumber string          `json:"accountNumber"`
	CustomerID    int64           `json:"customerId"`
	Balance       decimal.Decimal `json:"balance"`
	Timestamp     int64           `json:"timestamp"` // epoch millis
}

// TransactionEvent is published on transaction-events, keyed by transaction id.
type TransactionEvent struct {
	EventType     string          `json:"eventType"`
	TransactionID string          `json:"transactionId"`
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Timestamp     int64           `json:"timestamp"` // epoch millis
}
