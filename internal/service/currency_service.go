// internal/service/currency_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"family-ledger/internal/cache"
	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

// CurrencyService defines the interface for the currency reference.
type CurrencyService interface {
	// Resolve looks a currency up by numeric code ("643") or alpha code ("rub").
	Resolve(ctx context.Context, code string) (*domain.Currency, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
	// DefaultCurrency returns the default currency row, creating it on first use.
	DefaultCurrency(ctx context.Context) (*domain.Currency, error)
	// BulkImport inserts the rows whose codes are not yet known and reports how many were inserted.
	BulkImport(ctx context.Context, rows []domain.CurrencyRow) (int, error)
}

type currencyService struct {
	dbExecutor   repository.DBExecutor
	txRunner     *TxRunner
	currencyRepo repository.CurrencyRepository
	cache        cache.CurrencyCache
	defaultGroup singleflight.Group
	logger       *slog.Logger
}

// NewCurrencyService creates a new instance of CurrencyService.
func NewCurrencyService(
	dbExecutor repository.DBExecutor,
	txRunner *TxRunner,
	currencyRepo repository.CurrencyRepository,
	currencyCache cache.CurrencyCache,
) CurrencyService {
	return &currencyService{
		dbExecutor:   dbExecutor,
		txRunner:     txRunner,
		currencyRepo: currencyRepo,
		cache:        currencyCache,
		logger:       util.ComponentLogger("currency"),
	}
}

func (s *currencyService) Resolve(ctx context.Context, code string) (*domain.Currency, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, util.NewValidationError("currency", "is required")
	}

	if n, err := strconv.Atoi(code); err == nil {
		if n < 1 || n > 999 {
			return nil, util.NewValidationError("currency", "numeric code must be between 1 and 999")
		}
		numeric := int16(n)
		return s.lookup(ctx, cache.NumericKey(numeric), func() (*domain.Currency, error) {
			return s.currencyRepo.GetByNumericCode(ctx, s.dbExecutor, numeric)
		})
	}

	alpha := strings.ToUpper(code)
	if !domain.IsAlphaCode(alpha) {
		return nil, util.NewValidationError("currency", "must be a numeric code or a three letter code")
	}
	return s.lookup(ctx, cache.AlphaKey(alpha), func() (*domain.Currency, error) {
		return s.currencyRepo.GetByAlphaCode(ctx, s.dbExecutor, alpha)
	})
}

func (s *currencyService) Get(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	return s.lookup(ctx, cache.IDKey(id), func() (*domain.Currency, error) {
		return s.currencyRepo.GetCurrencyByID(ctx, s.dbExecutor, id)
	})
}

// lookup reads through the cache.
func (s *currencyService) lookup(ctx context.Context, key string, load func() (*domain.Currency, error)) (*domain.Currency, error) {
	if currency, ok := s.cache.Get(ctx, key); ok {
		return currency, nil
	}
	currency, err := load()
	if err != nil {
		return nil, err
	}
	cache.Put(ctx, s.cache, currency)
	return currency, nil
}

func (s *currencyService) List(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	return currencies, nil
}

// DefaultCurrency coalesces concurrent in-process callers; concurrent
// processes are kept to one row by the unique codes and ON CONFLICT DO NOTHING.
func (s *currencyService) DefaultCurrency(ctx context.Context) (*domain.Currency, error) {
	if currency, ok := s.cache.Get(ctx, cache.NumericKey(domain.DefaultCurrencyNumericCode)); ok {
		return currency, nil
	}

	v, err, _ := s.defaultGroup.Do("default", func() (interface{}, error) {
		return s.getOrCreateDefault(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("default currency: %w", err)
	}
	return v.(*domain.Currency), nil
}

func (s *currencyService) getOrCreateDefault(ctx context.Context) (*domain.Currency, error) {
	currency, err := s.currencyRepo.GetByNumericCode(ctx, s.dbExecutor, domain.DefaultCurrencyNumericCode)
	if err == nil {
		cache.Put(ctx, s.cache, currency)
		return currency, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	inserted, err := s.currencyRepo.CreateIfAbsent(ctx, s.dbExecutor, domain.NewCurrency(domain.DefaultCurrencyRow()))
	if err != nil {
		return nil, err
	}
	if inserted {
		s.logger.Info("Default currency created", "alpha_code", domain.DefaultCurrencyAlphaCode)
	}

	currency, err = s.currencyRepo.GetByNumericCode(ctx, s.dbExecutor, domain.DefaultCurrencyNumericCode)
	if errors.Is(err, util.ErrNotFound) {
		// The alpha code was already taken by a row with another numeric code.
		currency, err = s.currencyRepo.GetByAlphaCode(ctx, s.dbExecutor, domain.DefaultCurrencyAlphaCode)
	}
	if err != nil {
		return nil, err
	}
	cache.Put(ctx, s.cache, currency)
	return currency, nil
}

func (s *currencyService) BulkImport(ctx context.Context, rows []domain.CurrencyRow) (int, error) {
	normalized := make([]domain.CurrencyRow, 0, len(rows))
	seenNumeric := make(map[int16]struct{}, len(rows))
	seenAlpha := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		row, err := row.Normalize()
		if err != nil {
			return 0, fmt.Errorf("bulk import: row %d: %w", i, err)
		}
		if _, dup := seenNumeric[row.NumericCode]; dup {
			continue
		}
		if _, dup := seenAlpha[row.AlphaCode]; dup {
			continue
		}
		seenNumeric[row.NumericCode] = struct{}{}
		seenAlpha[row.AlphaCode] = struct{}{}
		normalized = append(normalized, row)
	}
	if len(normalized) == 0 {
		return 0, nil
	}

	var inserted int
	err := s.txRunner.Run(ctx, "bulk import", func(q repository.DBExecutor) error {
		inserted = 0
		for _, row := range normalized {
			ok, err := s.currencyRepo.CreateIfAbsent(ctx, q, domain.NewCurrency(row))
			if err != nil {
				return fmt.Errorf("bulk import: %w", err)
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Currencies imported", "received", len(rows), "inserted", inserted, "skipped", len(rows)-inserted)
	return inserted, nil
}
