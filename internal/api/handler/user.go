// internal/api/handler/user.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ledgerflow-wallet/internal/util"
)

// UserHandler handles HTTP requests for user and wallet creation.
type UserHandler struct {
	wallet *WalletHandler
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler. It reuses the wallet handler's
// response helpers so error mapping stays in one place.
func NewUserHandler(wallet *WalletHandler, logger *slog.Logger) *UserHandler {
	return &UserHandler{wallet: wallet, logger: logger}
}

// CreateUserRequest represents the request body for user creation.
// PasswordHash is accepted as given: credential handling lives outside
// this service.
type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// CreateUser handles user registration.
// POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.wallet.respondWithError(w, util.ErrInvalidInput)
		return
	}

	user, err := h.wallet.service.CreateUser(r.Context(), req.Name, req.Email, req.PasswordHash)
	if err != nil {
		h.wallet.respondWithError(w, err)
		return
	}
	h.wallet.respondWithJSON(w, http.StatusCreated, user)
}

// CreateWalletRequest represents the request body for wallet creation.
type CreateWalletRequest struct {
	Currency string `json:"currency"`
}

// CreateWallet handles wallet creation for a user.
// POST /users/{userID}/wallets
func (h *UserHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.wallet.respondWithError(w, util.ErrInvalidInput)
		return
	}

	wallet, err := h.wallet.service.CreateWallet(r.Context(), userID, req.Currency)
	if err != nil {
		h.wallet.respondWithError(w, err)
		return
	}
	h.wallet.respondWithJSON(w, http.StatusCreated, wallet)
}
