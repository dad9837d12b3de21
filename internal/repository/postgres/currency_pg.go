// internal/repository/postgres/currency_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

const currencyColumns = `id, numeric_code, alpha_code, name, created_at, updated_at`

// CurrencyRepository implements repository.CurrencyRepository for PostgreSQL.
type CurrencyRepository struct{}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository() repository.CurrencyRepository {
	return &CurrencyRepository{}
}

// CreateIfAbsent inserts the currency unless a row with the same numeric or
// alpha code exists. Concurrent callers racing on the same code all succeed,
// exactly one of them with inserted == true.
func (r *CurrencyRepository) CreateIfAbsent(ctx context.Context, q repository.DBExecutor, currency *domain.Currency) (bool, error) {
	query := `INSERT INTO currencies (id, numeric_code, alpha_code, name, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT DO NOTHING`
	result, err := q.ExecContext(ctx, query,
		currency.ID,
		currency.NumericCode,
		currency.AlphaCode,
		currency.Name,
		currency.CreatedAt,
		currency.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert currency %s: %w", currency.AlphaCode, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after inserting currency %s: %w", currency.AlphaCode, err)
	}
	return rowsAffected == 1, nil
}

// GetCurrencyByID retrieves a currency by its ID.
func (r *CurrencyRepository) GetCurrencyByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Currency, error) {
	return r.getOne(ctx, q, `SELECT `+currencyColumns+` FROM currencies WHERE id = $1`, id)
}

// GetByNumericCode retrieves a currency by its ISO 4217 numeric code.
func (r *CurrencyRepository) GetByNumericCode(ctx context.Context, q repository.DBExecutor, code int16) (*domain.Currency, error) {
	return r.getOne(ctx, q, `SELECT `+currencyColumns+` FROM currencies WHERE numeric_code = $1`, code)
}

// GetByAlphaCode retrieves a currency by its upper-case alpha code.
func (r *CurrencyRepository) GetByAlphaCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.Currency, error) {
	return r.getOne(ctx, q, `SELECT `+currencyColumns+` FROM currencies WHERE alpha_code = $1`, code)
}

func (r *CurrencyRepository) getOne(ctx context.Context, q repository.DBExecutor, query string, arg interface{}) (*domain.Currency, error) {
	var currency domain.Currency
	if err := q.GetContext(ctx, &currency, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency by %v: %w", arg, err)
	}
	return &currency, nil
}

// ListCurrencies returns all currencies ordered by alpha code.
func (r *CurrencyRepository) ListCurrencies(ctx context.Context, q repository.DBExecutor) ([]domain.Currency, error) {
	currencies := []domain.Currency{}
	query := `SELECT ` + currencyColumns + ` FROM currencies ORDER BY alpha_code`
	if err := q.SelectContext(ctx, &currencies, query); err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}
