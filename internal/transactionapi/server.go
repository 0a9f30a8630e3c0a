package transactionapi

import (
	"fmt"
	"net/http"
	"time"
)

// NewServer returns a configured *http.Server for the transaction API.
func NewServer(port uint16, svc TransactionService, metricsHandler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(svc, metricsHandler),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
