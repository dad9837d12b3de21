// internal/api/mocks_test.go
package api

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"family-ledger/internal/domain"
	"family-ledger/internal/service"
)

// MockCurrencyService is a mock implementation of service.CurrencyService.
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) Resolve(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) Get(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) List(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) DefaultCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyService) BulkImport(ctx context.Context, rows []domain.CurrencyRow) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

// MockCategoryService is a mock implementation of service.CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) category(args mock.Arguments) (*domain.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryService) seq(args mock.Arguments) (iter.Seq[domain.Category], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	categories := args.Get(0).([]domain.Category)
	return func(yield func(domain.Category) bool) {
		for _, c := range categories {
			if !yield(c) {
				return
			}
		}
	}, args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, ownerID int64, title, description string, parentID *uuid.UUID) (*domain.Category, error) {
	return m.category(m.Called(ctx, ownerID, title, description, parentID))
}

func (m *MockCategoryService) Update(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Category, error) {
	return m.category(m.Called(ctx, ownerID, id, title, description))
}

func (m *MockCategoryService) Move(ctx context.Context, ownerID int64, id uuid.UUID, newParentID *uuid.UUID) (*domain.Category, error) {
	return m.category(m.Called(ctx, ownerID, id, newParentID))
}

func (m *MockCategoryService) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockCategoryService) Get(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Category, error) {
	return m.category(m.Called(ctx, ownerID, id))
}

func (m *MockCategoryService) Roots(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error) {
	return m.seq(m.Called(ctx, ownerID))
}

func (m *MockCategoryService) ChildrenOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error) {
	return m.seq(m.Called(ctx, ownerID, id))
}

func (m *MockCategoryService) AncestorsOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error) {
	return m.seq(m.Called(ctx, ownerID, id))
}

func (m *MockCategoryService) Flatten(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error) {
	return m.seq(m.Called(ctx, ownerID))
}

// MockWalletService is a mock implementation of service.WalletService.
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) wallet(args mock.Arguments) (*domain.Wallet, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) CreateWallet(ctx context.Context, ownerID int64, title, currencyCode string, openingBalance decimal.Decimal, description string) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, ownerID, title, currencyCode, openingBalance, description))
}

func (m *MockWalletService) GetWallet(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, ownerID, id))
}

func (m *MockWalletService) ListWallets(ctx context.Context, ownerID int64) ([]domain.Wallet, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletService) UpdateWallet(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Wallet, error) {
	return m.wallet(m.Called(ctx, ownerID, id, title, description))
}

func (m *MockWalletService) DeleteWallet(ctx context.Context, ownerID int64, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockWalletService) BalanceOf(ctx context.Context, ownerID int64, id uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) Totals(ctx context.Context, ownerID int64) ([]domain.WalletTotal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.WalletTotal), args.Error(1)
}

// MockLedgerService is a mock implementation of service.LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) transaction(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) reconciliation(args mock.Arguments) (*domain.BalanceReconciliation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceReconciliation), args.Error(1)
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, in service.CreateTransactionInput) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, in))
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, in service.UpdateTransactionInput) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, in))
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, ownerID int64, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Transaction, error) {
	return m.transaction(m.Called(ctx, ownerID, id))
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) Stats(ctx context.Context, ownerID int64, from, to time.Time) (*domain.TransactionStats, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionStats), args.Error(1)
}

func (m *MockLedgerService) RecomputeWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error) {
	return m.reconciliation(m.Called(ctx, walletID))
}

func (m *MockLedgerService) CheckWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error) {
	return m.reconciliation(m.Called(ctx, walletID))
}

func (m *MockLedgerService) RecomputeAll(ctx context.Context, concurrency int) ([]domain.BalanceReconciliation, error) {
	args := m.Called(ctx, concurrency)
	return args.Get(0).([]domain.BalanceReconciliation), args.Error(1)
}

// MockLineItemService is a mock implementation of service.LineItemService.
type MockLineItemService struct {
	mock.Mock
}

func (m *MockLineItemService) AddLine(ctx context.Context, ownerID int64, transactionID uuid.UUID, amount decimal.Decimal, quantity int, tax decimal.Decimal) (*domain.LineItem, error) {
	args := m.Called(ctx, ownerID, transactionID, amount, quantity, tax)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineItem), args.Error(1)
}

func (m *MockLineItemService) ListLines(ctx context.Context, ownerID int64, transactionID uuid.UUID) ([]domain.LineItem, error) {
	args := m.Called(ctx, ownerID, transactionID)
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockLineItemService) DeleteLine(ctx context.Context, ownerID int64, transactionID, lineID uuid.UUID) error {
	return m.Called(ctx, ownerID, transactionID, lineID).Error(0)
}
