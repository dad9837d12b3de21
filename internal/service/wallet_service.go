// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

// WalletService defines the interface for wallet-related business logic.
// It never writes balances; that is LedgerService's job.
type WalletService interface {
	// CreateWallet opens a wallet. An empty currency code selects the default currency.
	CreateWallet(ctx context.Context, ownerID int64, title, currencyCode string, openingBalance decimal.Decimal, description string) (*domain.Wallet, error)
	GetWallet(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID int64) ([]domain.Wallet, error)
	UpdateWallet(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Wallet, error)
	DeleteWallet(ctx context.Context, ownerID int64, id uuid.UUID) error
	BalanceOf(ctx context.Context, ownerID int64, id uuid.UUID) (decimal.Decimal, error)
	Totals(ctx context.Context, ownerID int64) ([]domain.WalletTotal, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	txRunner        *TxRunner
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	currencies      CurrencyService
	logger          *slog.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbExecutor repository.DBExecutor,
	txRunner *TxRunner,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	currencies CurrencyService,
) WalletService {
	return &walletService{
		dbExecutor:      dbExecutor,
		txRunner:        txRunner,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		currencies:      currencies,
		logger:          util.ComponentLogger("wallet"),
	}
}

func (s *walletService) CreateWallet(ctx context.Context, ownerID int64, title, currencyCode string, openingBalance decimal.Decimal, description string) (*domain.Wallet, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = domain.NormalizeDescription(description)
	if err != nil {
		return nil, err
	}
	openingBalance, err = domain.NormalizeBalance("opening_balance", openingBalance)
	if err != nil {
		return nil, err
	}

	var currency *domain.Currency
	if strings.TrimSpace(currencyCode) == "" {
		currency, err = s.currencies.DefaultCurrency(ctx)
	} else {
		currency, err = s.currencies.Resolve(ctx, currencyCode)
	}
	if err != nil {
		return nil, fmt.Errorf("create wallet: currency %q: %w", currencyCode, err)
	}

	wallet := domain.NewWallet(ownerID, title, currency.ID, openingBalance, description)
	if err := s.walletRepo.CreateWallet(ctx, s.dbExecutor, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	s.logger.Info("Wallet created", "owner_id", ownerID, "wallet_id", wallet.ID, "currency", currency.AlphaCode, "opening_balance", openingBalance)
	return wallet, nil
}

func (s *walletService) GetWallet(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get wallet %s: %w", id, err)
	}
	if wallet.OwnerID != ownerID {
		return nil, fmt.Errorf("get wallet %s: %w", id, util.ErrOwnership)
	}
	return wallet, nil
}

func (s *walletService) ListWallets(ctx context.Context, ownerID int64) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListWalletsByOwner(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// UpdateWallet renames or re-describes a wallet. The balance is left alone.
func (s *walletService) UpdateWallet(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Wallet, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = domain.NormalizeDescription(description)
	if err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	err = s.txRunner.Run(ctx, "update wallet", func(q repository.DBExecutor) error {
		wallet, err = s.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("update wallet %s: %w", id, err)
		}
		if wallet.OwnerID != ownerID {
			return fmt.Errorf("update wallet %s: %w", id, util.ErrOwnership)
		}
		wallet.Title = title
		wallet.Description = description
		wallet.UpdatedAt = time.Now().UTC()
		if err := s.walletRepo.UpdateWalletDetails(ctx, q, wallet); err != nil {
			return fmt.Errorf("update wallet %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// DeleteWallet removes a wallet no transaction references. The wallet row is
// locked first so no transaction can be added to it while it is counted.
func (s *walletService) DeleteWallet(ctx context.Context, ownerID int64, id uuid.UUID) error {
	err := s.txRunner.Run(ctx, "delete wallet", func(q repository.DBExecutor) error {
		wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
		if err != nil {
			return fmt.Errorf("delete wallet %s: %w", id, err)
		}
		if wallet.OwnerID != ownerID {
			return fmt.Errorf("delete wallet %s: %w", id, util.ErrOwnership)
		}

		refs, err := s.transactionRepo.CountByWallet(ctx, q, id)
		if err != nil {
			return fmt.Errorf("delete wallet %s: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("delete wallet %s: %w", id, util.NewInUseError("wallet", refs))
		}

		if err := s.walletRepo.DeleteWallet(ctx, q, id); err != nil {
			return fmt.Errorf("delete wallet %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Wallet deleted", "owner_id", ownerID, "wallet_id", id)
	return nil
}

// BalanceOf returns the stored balance without recomputing it.
func (s *walletService) BalanceOf(ctx context.Context, ownerID int64, id uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.GetWallet(ctx, ownerID, id)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

func (s *walletService) Totals(ctx context.Context, ownerID int64) ([]domain.WalletTotal, error) {
	totals, err := s.walletRepo.TotalsByOwner(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, fmt.Errorf("wallet totals: %w", err)
	}
	return totals, nil
}
