// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ledgerflow-wallet/internal/api/handler"
	"ledgerflow-wallet/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, userHandler *handler.UserHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// User registration and wallet creation
	r.Post("/users", userHandler.CreateUser)
	r.Post("/users/{userID}/wallets", userHandler.CreateWallet)

	// Wallet API routes
	r.Route("/wallets", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			// Money-moving operations require a client-supplied idempotency key.
			r.Use(middleware.RequireIdempotencyKey)
			r.Post("/{walletID}/deposit", walletHandler.Deposit)
			r.Post("/{walletID}/withdraw", walletHandler.Withdraw)
		})
		r.Get("/{walletID}/balance", walletHandler.GetWalletBalance)
		r.Get("/{walletID}/transactions", walletHandler.GetTransactionHistory)
	})

	// Transfer is a separate top-level endpoint as it involves two wallets
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdempotencyKey)
		r.Post("/transfers", walletHandler.Transfer)
	})

	return r
}
