package transactionapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the transaction endpoints plus health and metrics.
func NewRouter(svc TransactionService, metricsHandler http.Handler) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/transactions", func(r chi.Router) {
		r.Post("/", h.CreateTransactionHandler)
		r.Get("/{transactionId}", h.GetTransactionHandler)
		r.Get("/account/{accountNumber}", h.AccountTransactionsHandler)
		r.Get("/statement/{accountNumber}", h.StatementHandler)
	})

	return r
}
