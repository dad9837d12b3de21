// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"family-ledger/internal/api/types"
	"family-ledger/internal/domain"
	"family-ledger/internal/service"
)

// WalletHandler handles HTTP requests related to wallets and their balances.
type WalletHandler struct {
	responder
	service service.WalletService
	ledger  service.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, ledger service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		responder: responder{logger: logger},
		service:   svc,
		ledger:    ledger,
	}
}

// CreateWalletRequest represents the request body for opening a wallet.
// An empty currency selects the default currency.
type CreateWalletRequest struct {
	Title          string          `json:"title"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Description    string          `json:"description"`
}

// CreateWallet handles the open wallet request.
// POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.CreateWallet(r.Context(), OwnerID(r.Context()), req.Title, req.Currency, req.OpeningBalance, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, wallet)
}

// ListWallets handles the list wallets request.
// GET /wallets
func (h *WalletHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.service.ListWallets(r.Context(), OwnerID(r.Context()))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(wallets))
}

// GetWallet handles the get wallet request.
// GET /wallets/{walletID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuidParam(r, "walletID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), OwnerID(r.Context()), walletID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, wallet)
}

// UpdateWalletRequest represents the request body for renaming a wallet.
type UpdateWalletRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateWallet handles the update wallet request. The balance cannot be set here.
// PUT /wallets/{walletID}
func (h *WalletHandler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuidParam(r, "walletID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req UpdateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, err := h.service.UpdateWallet(r.Context(), OwnerID(r.Context()), walletID, req.Title, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, wallet)
}

// DeleteWallet handles the delete wallet request.
// DELETE /wallets/{walletID}
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuidParam(r, "walletID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if err := h.service.DeleteWallet(r.Context(), OwnerID(r.Context()), walletID); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetWalletBalance handles the get wallet balance request.
// GET /wallets/{walletID}/balance
func (h *WalletHandler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuidParam(r, "walletID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	balance, err := h.service.BalanceOf(r.Context(), OwnerID(r.Context()), walletID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id": walletID,
		"balance":   balance,
	})
}

// GetTotals handles the balance totals per currency request.
// GET /wallets/totals
func (h *WalletHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.Totals(r.Context(), OwnerID(r.Context()))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(totals))
}

// ReconcileWallet recomputes the balance from the wallet's transactions.
// With ?dry_run=true the drift is only reported.
// POST /wallets/{walletID}/reconcile
func (h *WalletHandler) ReconcileWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := uuidParam(r, "walletID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if _, err := h.service.GetWallet(r.Context(), OwnerID(r.Context()), walletID); err != nil {
		h.respondWithError(w, err)
		return
	}

	var rec *domain.BalanceReconciliation
	if r.URL.Query().Get("dry_run") == "true" {
		rec, err = h.ledger.CheckWalletBalance(r.Context(), walletID)
	} else {
		rec, err = h.ledger.RecomputeWalletBalance(r.Context(), walletID)
	}
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, rec)
}
