// internal/repository/currency_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
)

// CurrencyRepository defines the interface for currency reference data.
type CurrencyRepository interface {
	// CreateIfAbsent inserts the currency unless its numeric or alpha code already exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, q DBExecutor, currency *domain.Currency) (bool, error)
	GetCurrencyByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Currency, error)
	GetByNumericCode(ctx context.Context, q DBExecutor, code int16) (*domain.Currency, error)
	GetByAlphaCode(ctx context.Context, q DBExecutor, code string) (*domain.Currency, error)
	// ListCurrencies returns every currency ordered by alpha code.
	ListCurrencies(ctx context.Context, q DBExecutor) ([]domain.Currency, error)
}
