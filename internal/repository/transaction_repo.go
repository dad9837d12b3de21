// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new transaction record to the database using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	GetTransactionByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Transaction, error)
	// GetTransactionByIDForUpdate retrieves a transaction and row-locks it.
	GetTransactionByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	DeleteTransaction(ctx context.Context, q DBExecutor, id uuid.UUID) error
	// ListTransactions returns one page of matching transactions, newest first, and the total match count.
	ListTransactions(ctx context.Context, q DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	CountByWallet(ctx context.Context, q DBExecutor, walletID uuid.UUID) (int, error)
	CountByCategory(ctx context.Context, q DBExecutor, categoryID uuid.UUID) (int, error)
	// SumByWallet returns the income and expense totals of one wallet.
	SumByWallet(ctx context.Context, q DBExecutor, walletID uuid.UUID) (income, expense decimal.Decimal, err error)
	// Stats aggregates the owner's transactions with occurred_on in [from, to].
	Stats(ctx context.Context, q DBExecutor, ownerID int64, from, to time.Time) (*domain.TransactionStats, error)
}
