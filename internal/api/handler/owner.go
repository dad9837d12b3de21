// internal/api/handler/owner.go
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"family-ledger/internal/util"
)

// OwnerHeader carries the authenticated user id set by the fronting web or
// bot layer. The ledger trusts it as given.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// RequireOwner rejects requests without a positive owner id and stores the
// id in the request context.
func RequireOwner(logger *slog.Logger) func(http.Handler) http.Handler {
	h := responder{logger: logger}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(OwnerHeader)), 10, 64)
			if err != nil || ownerID <= 0 {
				h.respondWithError(w, util.NewValidationError(OwnerHeader, "must be a positive integer"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, ownerID)))
		})
	}
}

// OwnerID returns the owner id stored by RequireOwner, or 0.
func OwnerID(ctx context.Context) int64 {
	id, _ := ctx.Value(ownerKey{}).(int64)
	return id
}
