package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baharkarakas/wallet-ops/internal/api/handlers"
	"github.com/baharkarakas/wallet-ops/internal/auth"
	"github.com/baharkarakas/wallet-ops/internal/config"
	"github.com/baharkarakas/wallet-ops/internal/middleware"
	"github.com/baharkarakas/wallet-ops/internal/repository"
	"github.com/baharkarakas/wallet-ops/internal/services"
)

type RouterDeps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Console *services.Console
	Tokens  *auth.TokenManager
	Admins  repository.Admins
}

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID(log), middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	lh := handlers.NewLedgerHandler(d.Console)
	ih := handlers.NewInvoiceHandler(d.Console)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Bearer)

		if d.Cfg.Env == "dev" && d.Tokens != nil && d.Admins != nil {
			r.Post("/dev/token", handlers.NewAuthHandler(d.Tokens, d.Admins).DevToken)
		}

		// ---------- ledger ----------
		r.Get("/transactions", lh.ListTransactions)
		r.Get("/transactions/{id}", lh.GetTransaction)
		r.Post("/transactions/{id}/reverse", lh.Reverse)
		r.Get("/accounts/{kind}/{id}", lh.GetAccount)

		// ---------- invoices ----------
		r.Post("/invoices", ih.Create)
		r.Get("/invoices/{id}", ih.Get)
		r.Put("/invoices/{id}", ih.Edit)
		r.Post("/invoices/{id}/cancel", ih.Cancel)
		r.Post("/invoices/{id}/approve", ih.Approve)
		r.Post("/invoices/{id}/suspend", ih.Suspend)
		r.Post("/invoices/{id}/refund", ih.Refund)
		r.Get("/merchants/{id}/invoices", ih.ListForMerchant)
		r.Get("/merchants/{id}/notifications", ih.Notifications)

		// ---------- users ----------
		r.Post("/users/{id}/reset-pin", lh.ResetPin)
	})

	return r
}
