// internal/api/handler/currency.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"family-ledger/internal/api/types"
	"family-ledger/internal/domain"
	"family-ledger/internal/service"
)

// CurrencyHandler serves the shared currency reference.
type CurrencyHandler struct {
	responder
	service service.CurrencyService
}

func NewCurrencyHandler(svc service.CurrencyService, logger *slog.Logger) *CurrencyHandler {
	return &CurrencyHandler{responder: responder{logger: logger}, service: svc}
}

// ListCurrencies handles GET /currencies
func (h *CurrencyHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.service.List(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(currencies))
}

// GetCurrency resolves a numeric or alpha code.
// GET /currencies/{code}
func (h *CurrencyHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	currency, err := h.service.Resolve(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, currency)
}

// GetDefaultCurrency handles GET /currencies/default
func (h *CurrencyHandler) GetDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	currency, err := h.service.DefaultCurrency(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, currency)
}

// ImportCurrenciesRequest is a batch of reference rows.
type ImportCurrenciesRequest struct {
	Currencies []domain.CurrencyRow `json:"currencies"`
}

// ImportCurrencies inserts the rows whose codes are unknown.
// POST /currencies/import
func (h *CurrencyHandler) ImportCurrencies(w http.ResponseWriter, r *http.Request) {
	var req ImportCurrenciesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	inserted, err := h.service.BulkImport(r.Context(), req.Currencies)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"received": len(req.Currencies),
		"inserted": inserted,
	})
}
