// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
)

// WalletRepository defines the interface for wallet data operations.
//
// AdjustBalance and SetBalance are the only statements that write
// wallets.balance; they are called by the ledger service alone.
type WalletRepository interface {
	// CreateWallet adds a new wallet to the database.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID.
	GetWalletByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet and row-locks it until the transaction ends.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	ListWalletsByOwner(ctx context.Context, q DBExecutor, ownerID int64) ([]domain.Wallet, error)
	ListWalletIDs(ctx context.Context, q DBExecutor) ([]uuid.UUID, error)
	UpdateWalletDetails(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// AdjustBalance adds delta to the stored balance.
	AdjustBalance(ctx context.Context, q DBExecutor, walletID uuid.UUID, delta decimal.Decimal) error
	// SetBalance overwrites the stored balance.
	SetBalance(ctx context.Context, q DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error
	DeleteWallet(ctx context.Context, q DBExecutor, id uuid.UUID) error
	// TotalsByOwner sums the owner's balances per currency.
	TotalsByOwner(ctx context.Context, q DBExecutor, ownerID int64) ([]domain.WalletTotal, error)
}
