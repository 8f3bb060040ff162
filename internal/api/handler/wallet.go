// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ledgerflow-wallet/internal/api/middleware"
	"ledgerflow-wallet/internal/api/types"
	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/service"
	"ledgerflow-wallet/internal/util"
)

// DefaultTimeout is applied to every request by the router.
const DefaultTimeout = 30 * time.Second

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *WalletHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *WalletHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrMissingIdempotencyKey),
		util.IsError(err, util.ErrSelfTransfer),
		util.IsError(err, util.ErrCurrencyMismatch),
		util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrWalletNotFound),
		util.IsError(err, util.ErrUserNotFound),
		util.IsError(err, util.ErrRecipientNotFound),
		util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrAlreadyProcessed):
		// The exact operation already completed; a retry is benign.
		statusCode = http.StatusConflict
		message = "Operation already processed"
	case util.IsError(err, util.ErrAlreadyCreated),
		util.IsError(err, util.ErrWalletNotCreated),
		util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient balance"
	case util.IsError(err, util.ErrDailyLimitExceeded):
		statusCode = http.StatusUnprocessableEntity
		message = "Daily limit exceeded"
	case util.IsError(err, util.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Temporarily unavailable, please retry"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// MoneyRequest represents the request body for deposits and withdrawals.
type MoneyRequest struct {
	Amount   string            `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (r MoneyRequest) money() (domain.Money, error) {
	if r.Amount == "" || r.Currency == "" {
		return domain.Money{}, util.ErrInvalidInput
	}
	return domain.MoneyFromDecimal(r.Amount, r.Currency)
}

// Deposit handles the deposit money request.
// POST /wallets/{walletID}/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	idempotencyKey := r.Header.Get(middleware.IdempotencyKeyHeader)

	var req MoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	amount, err := req.money()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Deposit(r.Context(), walletID, amount, idempotencyKey, req.Metadata)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// Withdraw handles the withdraw money request.
// POST /wallets/{walletID}/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")
	idempotencyKey := r.Header.Get(middleware.IdempotencyKeyHeader)

	var req MoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	amount, err := req.money()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Withdraw(r.Context(), walletID, amount, idempotencyKey, req.Metadata)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// TransferRequest represents the request body for transfers.
type TransferRequest struct {
	SenderWalletID string            `json:"sender_wallet_id"`
	SenderEmail    string            `json:"sender_email"`
	RecipientEmail string            `json:"recipient_email"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Transfer handles the transfer request.
// POST /transfers
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get(middleware.IdempotencyKeyHeader)

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.SenderWalletID == "" || req.RecipientEmail == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	amount, err := MoneyRequest{Amount: req.Amount, Currency: req.Currency}.money()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), req.SenderWalletID, req.SenderEmail, req.RecipientEmail, amount, idempotencyKey, req.Metadata)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// GetWalletBalance handles the balance query.
// GET /wallets/{walletID}/balance
func (h *WalletHandler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")

	wallet, err := h.service.GetBalance(r.Context(), walletID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	balance, err := domain.NewMoney(wallet.BalanceCents, wallet.Currency)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id":     wallet.ID,
		"balance_cents": wallet.BalanceCents,
		"balance":       balance.Decimal(),
		"currency":      wallet.Currency,
	})
}

// GetTransactionHistory handles the paginated history query.
// GET /wallets/{walletID}/transactions?limit=&offset=
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "walletID")

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > maxHistoryLimit {
			h.respondWithError(w, util.ErrInvalidInput)
			return
		}
		limit = parsed
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.respondWithError(w, util.ErrInvalidInput)
			return
		}
		offset = parsed
	}

	transactions, totalCount, err := h.service.GetTransactionHistory(r.Context(), walletID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
