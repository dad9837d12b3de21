// internal/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
)

// CurrencyCache stores currency rows by lookup key. Currency codes never
// change once created, so entries are never invalidated, only expired.
// A failing cache behaves like an empty one.
type CurrencyCache interface {
	Get(ctx context.Context, key string) (*domain.Currency, bool)
	Set(ctx context.Context, key string, currency *domain.Currency)
}

func IDKey(id uuid.UUID) string {
	return "currency:id:" + id.String()
}

func NumericKey(code int16) string {
	return fmt.Sprintf("currency:num:%03d", code)
}

func AlphaKey(code string) string {
	return "currency:alpha:" + strings.ToUpper(code)
}

// Put stores currency under every key it can be looked up by.
func Put(ctx context.Context, c CurrencyCache, currency *domain.Currency) {
	c.Set(ctx, IDKey(currency.ID), currency)
	c.Set(ctx, NumericKey(currency.NumericCode), currency)
	c.Set(ctx, AlphaKey(currency.AlphaCode), currency)
}
