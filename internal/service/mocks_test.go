// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implements repository.DBExecutor by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newMockRunner returns a TxRunner whose transactions are tx. begins counts
// how many transactions were started.
func newMockRunner(tx *MockTxController, maxAttempts int) (*TxRunner, *int) {
	begins := 0
	r := NewTxRunner(new(MockDBBeginner),
		func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			begins++
			return tx, nil
		},
		func(t db.TxController) error {
			return tx.Commit()
		},
		func(t db.TxController) {
			_ = tx.Rollback()
		},
		maxAttempts,
	)
	r.backoff = time.Millisecond
	return r, &begins
}

// decimalEq matches a decimal argument by value rather than representation.
func decimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(expected) })
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWalletsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Wallet, error) {
	args := m.Called(ctx, q, ownerID)
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListWalletIDs(ctx context.Context, q repository.DBExecutor) ([]uuid.UUID, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletDetails(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, delta)
	return args.Error(0)
}

func (m *MockWalletRepository) SetBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, balance)
	return args.Error(0)
}

func (m *MockWalletRepository) DeleteWallet(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockWalletRepository) TotalsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.WalletTotal, error) {
	args := m.Called(ctx, q, ownerID)
	return args.Get(0).([]domain.WalletTotal), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetTransactionByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, filter)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) CountByWallet(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, walletID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) CountByCategory(ctx context.Context, q repository.DBExecutor, categoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, q, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) SumByWallet(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockTransactionRepository) Stats(ctx context.Context, q repository.DBExecutor, ownerID int64, from, to time.Time) (*domain.TransactionStats, error) {
	args := m.Called(ctx, q, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionStats), args.Error(1)
}

// MockCurrencyService is a mock implementation of CurrencyService.
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
