// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"family-ledger/internal/api/handler"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Currency    *handler.CurrencyHandler
	Category    *handler.CategoryHandler
	Wallet      *handler.WalletHandler
	Transaction *handler.TransactionHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// The currency reference is shared by all owners.
	r.Route("/currencies", func(r chi.Router) {
		r.Get("/", h.Currency.ListCurrencies)
		r.Get("/default", h.Currency.GetDefaultCurrency)
		r.Post("/import", h.Currency.ImportCurrencies)
		r.Get("/{code}", h.Currency.GetCurrency)
	})

	r.Group(func(r chi.Router) {
		r.Use(handler.RequireOwner(logger))

		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", h.Wallet.CreateWallet)
			r.Get("/", h.Wallet.ListWallets)
			r.Get("/totals", h.Wallet.GetTotals)
			r.Get("/{walletID}", h.Wallet.GetWallet)
			r.Put("/{walletID}", h.Wallet.UpdateWallet)
			r.Delete("/{walletID}", h.Wallet.DeleteWallet)
			r.Get("/{walletID}/balance", h.Wallet.GetWalletBalance)
			r.Post("/{walletID}/reconcile", h.Wallet.ReconcileWallet)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.Category.CreateCategory)
			r.Get("/", h.Category.GetTree)
			r.Get("/roots", h.Category.GetRoots)
			r.Get("/{categoryID}", h.Category.GetCategory)
			r.Put("/{categoryID}", h.Category.UpdateCategory)
			r.Delete("/{categoryID}", h.Category.DeleteCategory)
			r.Get("/{categoryID}/children", h.Category.GetChildren)
			r.Get("/{categoryID}/ancestors", h.Category.GetAncestors)
			r.Post("/{categoryID}/move", h.Category.MoveCategory)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.Transaction.CreateTransaction)
			r.Get("/", h.Transaction.ListTransactions)
			r.Get("/stats", h.Transaction.GetStats)
			r.Get("/{transactionID}", h.Transaction.GetTransaction)
			r.Put("/{transactionID}", h.Transaction.UpdateTransaction)
			r.Delete("/{transactionID}", h.Transaction.DeleteTransaction)
			r.Post("/{transactionID}/lines", h.Transaction.AddLine)
			r.Get("/{transactionID}/lines", h.Transaction.ListLines)
			r.Delete("/{transactionID}/lines/{lineID}", h.Transaction.DeleteLine)
		})
	})

	return r
}
