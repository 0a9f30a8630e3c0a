package accountapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the account endpoints plus health and metrics.
func NewRouter(svc AccountService, metricsHandler http.Handler) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/accounts", func(r chi.Router) {
		r.Post("/", h.OpenAccountHandler)
		r.Get("/{accountNumber}", h.GetAccountHandler)
		r.Get("/customer/{customerId}", h.CustomerAccountsHandler)
		r.Put("/{accountNumber}/balance", h.UpdateBalanceHandler)
	})

	return r
}
