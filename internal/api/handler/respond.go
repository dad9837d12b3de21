// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"family-ledger/internal/api/types"
	"family-ledger/internal/util"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 15 * time.Second

const dateLayout = "2006-01-02"

// responder holds the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
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

// Helper function to send error responses.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	statusCode, body := errorResponse(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error("Unhandled service error", "error", err)
	}
	h.respondWithJSON(w, statusCode, body)
}

// errorResponse maps the service error taxonomy onto HTTP.
func errorResponse(err error) (int, types.ErrorResponse) {
	var validation *util.ValidationError
	var dependents *util.DependentsError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, types.ErrorResponse{Error: validation.Reason, Field: validation.Field}
	case util.IsError(err, util.ErrInvalidInput):
		return http.StatusBadRequest, types.ErrorResponse{Error: "Invalid input"}
	case util.IsError(err, util.ErrNotFound):
		return http.StatusNotFound, types.ErrorResponse{Error: notFoundMessage(err)}
	case util.IsError(err, util.ErrOwnership):
		return http.StatusForbidden, types.ErrorResponse{Error: "Resource belongs to another owner"}
	case errors.As(err, &dependents):
		return http.StatusConflict, types.ErrorResponse{Error: dependents.Error(), Count: dependents.Count}
	case util.IsError(err, util.ErrDuplicateCategory),
		util.IsError(err, util.ErrCycleDetected),
		util.IsError(err, util.ErrInvalidParent),
		util.IsError(err, util.ErrHasChildren),
		util.IsError(err, util.ErrInUse):
		return http.StatusConflict, types.ErrorResponse{Error: conflictMessage(err)}
	case util.IsError(err, util.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable, types.ErrorResponse{Error: util.ErrConcurrencyConflict.Error()}
	default:
		return http.StatusInternalServerError, types.ErrorResponse{Error: "Internal server error"}
	}
}

func notFoundMessage(err error) string {
	for _, specific := range []error{
		util.ErrWalletNotFound,
		util.ErrCategoryNotFound,
		util.ErrCurrencyNotFound,
		util.ErrTransactionNotFound,
		util.ErrLineItemNotFound,
	} {
		if errors.Is(err, specific) {
			return specific.Error()
		}
	}
	return "Resource not found"
}

func conflictMessage(err error) string {
	for _, kind := range []error{
		util.ErrDuplicateCategory,
		util.ErrCycleDetected,
		util.ErrInvalidParent,
		util.ErrHasChildren,
		util.ErrInUse,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return util.NewValidationError("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, util.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

func optionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, util.NewValidationError(field, "must be a UUID")
	}
	return &id, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, util.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return &d, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, util.NewValidationError(key, "must be an integer")
	}
	return n, nil
}
