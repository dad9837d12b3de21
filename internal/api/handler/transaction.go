// internal/api/handler/transaction.go
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/api/types"
	"family-ledger/internal/domain"
	"family-ledger/internal/service"
	"family-ledger/internal/util"
)

// TransactionHandler handles ledger writes, queries and receipt lines.
type TransactionHandler struct {
	responder
	ledger service.LedgerService
	lines  service.LineItemService
}

func NewTransactionHandler(ledger service.LedgerService, lines service.LineItemService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		responder: responder{logger: logger},
		ledger:    ledger,
		lines:     lines,
	}
}

// TransactionRequest is the body of both create and update. On update every
// field is replaced; an empty occurred_on keeps the stored date.
type TransactionRequest struct {
	WalletID    uuid.UUID       `json:"wallet_id"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Type        string          `json:"t_type"`
	Amount      decimal.Decimal `json:"amount"`
	Tax         decimal.Decimal `json:"tax"`
	Description string          `json:"description"`
	OccurredOn  string          `json:"occurred_on"` // YYYY-MM-DD
}

func (req TransactionRequest) parse() (domain.TransactionType, time.Time, error) {
	if req.WalletID == uuid.Nil {
		return "", time.Time{}, util.NewValidationError("wallet_id", "is required")
	}
	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return "", time.Time{}, err
	}
	occurredOn, err := optionalDate("occurred_on", req.OccurredOn)
	if err != nil {
		return "", time.Time{}, err
	}
	if occurredOn == nil {
		return txType, time.Time{}, nil
	}
	return txType, *occurredOn, nil
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	txType, occurredOn, err := req.parse()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	transaction, err := h.ledger.CreateTransaction(r.Context(), service.CreateTransactionInput{
		OwnerID:     OwnerID(r.Context()),
		WalletID:    req.WalletID,
		CategoryID:  req.CategoryID,
		Type:        txType,
		Amount:      req.Amount,
		Tax:         req.Tax,
		Description: req.Description,
		OccurredOn:  occurredOn,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, transaction)
}

// UpdateTransaction handles PUT /transactions/{transactionID}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	txType, occurredOn, err := req.parse()
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	transaction, err := h.ledger.UpdateTransaction(r.Context(), service.UpdateTransactionInput{
		OwnerID:       OwnerID(r.Context()),
		TransactionID: id,
		WalletID:      req.WalletID,
		CategoryID:    req.CategoryID,
		Type:          txType,
		Amount:        req.Amount,
		Tax:           req.Tax,
		Description:   req.Description,
		OccurredOn:    occurredOn,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE /transactions/{transactionID}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := h.ledger.DeleteTransaction(r.Context(), OwnerID(r.Context()), id); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTransaction handles GET /transactions/{transactionID}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	transaction, err := h.ledger.GetTransaction(r.Context(), OwnerID(r.Context()), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, transaction)
}

// ListTransactions handles the transaction history request.
// GET /transactions?wallet_id=&category_id=&t_type=&from=&to=&q=&limit=&offset=
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	transactions, total, err := h.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = len(transactions)
	}
	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     filter.Offset,
		TotalCount: total,
	})
}

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{
		OwnerID: OwnerID(r.Context()),
		Type:    domain.TransactionType(query.Get("t_type")),
		Search:  query.Get("q"),
	}

	var err error
	if filter.WalletID, err = optionalUUID("wallet_id", query.Get("wallet_id")); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = optionalUUID("category_id", query.Get("category_id")); err != nil {
		return filter, err
	}
	if filter.From, err = optionalDate("from", query.Get("from")); err != nil {
		return filter, err
	}
	if filter.To, err = optionalDate("to", query.Get("to")); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetStats aggregates income and expense over an inclusive date range.
// Without from/to the current calendar month is used.
// GET /transactions/stats?from=&to=
func (h *TransactionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if d, err := optionalDate("from", r.URL.Query().Get("from")); err != nil {
		h.respondWithError(w, err)
		return
	} else if d != nil {
		from = *d
	}
	if d, err := optionalDate("to", r.URL.Query().Get("to")); err != nil {
		h.respondWithError(w, err)
		return
	} else if d != nil {
		to = *d
	}

	stats, err := h.ledger.Stats(r.Context(), OwnerID(r.Context()), from, to)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from.Format(dateLayout),
		"to":    to.Format(dateLayout),
		"stats": stats,
	})
}

// LineItemRequest represents the request body for a receipt line.
type LineItemRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity"`
	Tax      decimal.Decimal `json:"tax"`
}

// AddLine handles POST /transactions/{transactionID}/lines
func (h *TransactionHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	req := LineItemRequest{Quantity: 1}
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	item, err := h.lines.AddLine(r.Context(), OwnerID(r.Context()), id, req.Amount, req.Quantity, req.Tax)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, item)
}

// ListLines handles GET /transactions/{transactionID}/lines
func (h *TransactionHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	items, err := h.lines.ListLines(r.Context(), OwnerID(r.Context()), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.NewListResponse(items))
}

// DeleteLine handles DELETE /transactions/{transactionID}/lines/{lineID}
func (h *TransactionHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "transactionID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	lineID, err := uuidParam(r, "lineID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := h.lines.DeleteLine(r.Context(), OwnerID(r.Context()), id, lineID); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
