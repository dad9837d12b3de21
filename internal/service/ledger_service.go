// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// CreateTransactionInput carries the fields of a new transaction.
// A zero OccurredOn means today.
type CreateTransactionInput struct {
	OwnerID     int64
	WalletID    uuid.UUID
	CategoryID  *uuid.UUID
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Tax         decimal.Decimal
	Description string
	OccurredOn  time.Time
}

// UpdateTransactionInput replaces every mutable field of a transaction.
// A zero OccurredOn keeps the stored date.
type UpdateTransactionInput struct {
	OwnerID       int64
	TransactionID uuid.UUID
	WalletID      uuid.UUID
	CategoryID    *uuid.UUID
	Type          domain.TransactionType
	Amount        decimal.Decimal
	Tax           decimal.Decimal
	Description   string
	OccurredOn    time.Time
}

// LedgerService is the only writer of wallet balances. Every mutation stores
// the transaction row and the balance deltas it implies in one database
// transaction, with the touched wallet rows locked in id order.
type LedgerService interface {
	CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, in UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID int64, id uuid.UUID) error

	GetTransaction(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	Stats(ctx context.Context, ownerID int64, from, to time.Time) (*domain.TransactionStats, error)

	// RecomputeWalletBalance overwrites the stored balance with the sum of the
	// wallet's transactions. It is idempotent.
	RecomputeWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error)
	// CheckWalletBalance reports drift without writing.
	CheckWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error)
	// RecomputeAll repairs every wallet, at most concurrency at a time.
	RecomputeAll(ctx context.Context, concurrency int) ([]domain.BalanceReconciliation, error)
}

type ledgerService struct {
	dbExecutor      repository.DBExecutor
	txRunner        *TxRunner
	walletRepo      repository.WalletRepository
	categoryRepo    repository.CategoryRepository
	transactionRepo repository.TransactionRepository
	logger          *slog.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbExecutor repository.DBExecutor,
	txRunner *TxRunner,
	walletRepo repository.WalletRepository,
	categoryRepo repository.CategoryRepository,
	transactionRepo repository.TransactionRepository,
) LedgerService {
	return &ledgerService{
		dbExecutor:      dbExecutor,
		txRunner:        txRunner,
		walletRepo:      walletRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		logger:          util.ComponentLogger("ledger"),
	}
}

type transactionFields struct {
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Tax         decimal.Decimal
	Description string
}

// validateFields checks and normalizes everything that needs no database access.
func validateFields(f transactionFields) (transactionFields, error) {
	var err error
	if !f.Type.Valid() {
		return f, util.NewValidationError("t_type", "must be IN or EX")
	}
	if f.Amount, err = domain.NormalizeAmount("amount", f.Amount, true); err != nil {
		return f, err
	}
	if f.Tax, err = domain.NormalizeTax("tax", f.Tax); err != nil {
		return f, err
	}
	if f.Description, err = domain.NormalizeDescription(f.Description); err != nil {
		return f, err
	}
	return f, nil
}

func (s *ledgerService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*domain.Transaction, error) {
	fields, err := validateFields(transactionFields{Type: in.Type, Amount: in.Amount, Tax: in.Tax, Description: in.Description})
	if err != nil {
		return nil, err
	}

	var (
		transaction *domain.Transaction
		adjustments []domain.BalanceAdjustment
	)
	err = s.txRunner.Run(ctx, "create transaction", func(q repository.DBExecutor) error {
		if _, err := s.lockOwnedWallets(ctx, q, in.OwnerID, in.WalletID); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		if err := s.checkCategory(ctx, q, in.OwnerID, in.CategoryID); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		transaction = domain.NewTransaction(in.OwnerID, in.WalletID, in.CategoryID, fields.Type, fields.Amount, fields.Tax, fields.Description, in.OccurredOn)
		if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		adjustments = domain.PlanCreate(transaction.Effect())
		return s.applyAdjustments(ctx, q, "create transaction", adjustments)
	})
	if err != nil {
		return nil, err
	}

	s.logMutation("Transaction created", transaction, adjustments)
	return transaction, nil
}

func (s *ledgerService) UpdateTransaction(ctx context.Context, in UpdateTransactionInput) (*domain.Transaction, error) {
	fields, err := validateFields(transactionFields{Type: in.Type, Amount: in.Amount, Tax: in.Tax, Description: in.Description})
	if err != nil {
		return nil, err
	}

	var (
		transaction *domain.Transaction
		adjustments []domain.BalanceAdjustment
	)
	err = s.txRunner.Run(ctx, "update transaction", func(q repository.DBExecutor) error {
		current, err := s.lockOwnedTransaction(ctx, q, in.OwnerID, in.TransactionID)
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if _, err := s.lockOwnedWallets(ctx, q, in.OwnerID, current.WalletID, in.WalletID); err != nil {
			return fmt.Errorf("update transaction %s: %w", in.TransactionID, err)
		}
		if err := s.checkCategory(ctx, q, in.OwnerID, in.CategoryID); err != nil {
			return fmt.Errorf("update transaction %s: %w", in.TransactionID, err)
		}

		updated := *current
		updated.WalletID = in.WalletID
		updated.CategoryID = in.CategoryID
		updated.Type = fields.Type
		updated.Amount = fields.Amount
		updated.Tax = fields.Tax
		updated.Description = fields.Description
		if !in.OccurredOn.IsZero() {
			updated.OccurredOn = domain.TruncateToDate(in.OccurredOn)
		}
		updated.UpdatedAt = time.Now().UTC()

		if err := s.transactionRepo.UpdateTransaction(ctx, q, &updated); err != nil {
			return fmt.Errorf("update transaction %s: %w", in.TransactionID, err)
		}

		adjustments = domain.PlanUpdate(current.Effect(), updated.Effect())
		if err := s.applyAdjustments(ctx, q, "update transaction", adjustments); err != nil {
			return err
		}
		transaction = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logMutation("Transaction updated", transaction, adjustments)
	return transaction, nil
}

func (s *ledgerService) DeleteTransaction(ctx context.Context, ownerID int64, id uuid.UUID) error {
	var (
		transaction *domain.Transaction
		adjustments []domain.BalanceAdjustment
	)
	err := s.txRunner.Run(ctx, "delete transaction", func(q repository.DBExecutor) error {
		var err error
		transaction, err = s.lockOwnedTransaction(ctx, q, ownerID, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if _, err := s.lockOwnedWallets(ctx, q, ownerID, transaction.WalletID); err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}

		if err := s.transactionRepo.DeleteTransaction(ctx, q, id); err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}

		adjustments = domain.PlanDelete(transaction.Effect())
		return s.applyAdjustments(ctx, q, "delete transaction", adjustments)
	})
	if err != nil {
		return err
	}

	s.logMutation("Transaction deleted", transaction, adjustments)
	return nil
}

// lockOwnedTransaction locks the transaction row. It is always taken before
// any wallet row.
func (s *ledgerService) lockOwnedTransaction(ctx context.Context, q repository.DBExecutor, ownerID int64, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByIDForUpdate(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if transaction.OwnerID != ownerID {
		return nil, fmt.Errorf("transaction %s: %w", id, util.ErrOwnership)
	}
	return transaction, nil
}

// lockOwnedWallets locks the distinct wallets in ascending id order and
// checks each belongs to ownerID.
func (s *ledgerService) lockOwnedWallets(ctx context.Context, q repository.DBExecutor, ownerID int64, ids ...uuid.UUID) ([]*domain.Wallet, error) {
	sorted := domain.SortedWalletIDs(ids...)
	wallets := make([]*domain.Wallet, 0, len(sorted))
	for _, id := range sorted {
		wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, id)
		if err != nil {
			return nil, err
		}
		if wallet.OwnerID != ownerID {
			return nil, fmt.Errorf("wallet %s: %w", id, util.ErrOwnership)
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

func (s *ledgerService) checkCategory(ctx context.Context, q repository.DBExecutor, ownerID int64, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.GetCategoryByID(ctx, q, *categoryID)
	if err != nil {
		return err
	}
	if category.OwnerID != ownerID {
		return fmt.Errorf("category %s: %w", *categoryID, util.ErrOwnership)
	}
	return nil
}

func (s *ledgerService) applyAdjustments(ctx context.Context, q repository.DBExecutor, op string, adjustments []domain.BalanceAdjustment) error {
	for _, a := range adjustments {
		if err := s.walletRepo.AdjustBalance(ctx, q, a.WalletID, a.Delta); err != nil {
			return fmt.Errorf("%s: failed to update wallet balance: %w", op, err)
		}
	}
	return nil
}

func (s *ledgerService) logMutation(msg string, t *domain.Transaction, adjustments []domain.BalanceAdjustment) {
	attrs := []any{"owner_id", t.OwnerID, "transaction_id", t.ID, "t_type", t.Type, "amount", t.Amount}
	for i, a := range adjustments {
		attrs = append(attrs, slog.Group(fmt.Sprintf("adjustment_%d", i), "wallet_id", a.WalletID, "delta", a.Delta))
	}
	s.logger.Info(msg, attrs...)
}

func (s *ledgerService) GetTransaction(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	if transaction.OwnerID != ownerID {
		return nil, fmt.Errorf("get transaction %s: %w", id, util.ErrOwnership)
	}
	return transaction, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, util.NewValidationError("t_type", "must be IN or EX")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, util.NewValidationError("from", "must not be after to")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transactions, total, err := s.transactionRepo.ListTransactions(ctx, s.dbExecutor, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transactions: %w", err)
	}
	return transactions, total, nil
}

func (s *ledgerService) Stats(ctx context.Context, ownerID int64, from, to time.Time) (*domain.TransactionStats, error) {
	if from.After(to) {
		return nil, util.NewValidationError("from", "must not be after to")
	}
	stats, err := s.transactionRepo.Stats(ctx, s.dbExecutor, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	return stats, nil
}

func (s *ledgerService) RecomputeWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error) {
	return s.reconcile(ctx, walletID, true)
}

func (s *ledgerService) CheckWalletBalance(ctx context.Context, walletID uuid.UUID) (*domain.BalanceReconciliation, error) {
	return s.reconcile(ctx, walletID, false)
}

// reconcile sums the wallet's transactions while holding the wallet row lock,
// so no ledger write can slip between the sum and the comparison.
func (s *ledgerService) reconcile(ctx context.Context, walletID uuid.UUID, repair bool) (*domain.BalanceReconciliation, error) {
	op := "check wallet balance"
	if repair {
		op = "recompute wallet balance"
	}

	var rec domain.BalanceReconciliation
	err := s.txRunner.Run(ctx, op, func(q repository.DBExecutor) error {
		wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, walletID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		income, expense, err := s.transactionRepo.SumByWallet(ctx, q, walletID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		recomputed := income.Sub(expense)
		rec = domain.BalanceReconciliation{
			WalletID:   walletID,
			Previous:   wallet.Balance,
			Recomputed: recomputed,
			Drift:      wallet.Balance.Sub(recomputed),
		}
		if repair && rec.Drifted() {
			if err := s.walletRepo.SetBalance(ctx, q, walletID, recomputed); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rec.Drifted() {
		s.logger.Warn("Wallet balance drift", "wallet_id", walletID, "stored", rec.Previous, "recomputed", rec.Recomputed, "repaired", repair)
	}
	return &rec, nil
}

func (s *ledgerService) RecomputeAll(ctx context.Context, concurrency int) ([]domain.BalanceReconciliation, error) {
	ids, err := s.walletRepo.ListWalletIDs(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("recompute all: %w", err)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]domain.BalanceReconciliation, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.RecomputeWalletBalance(gctx, id)
			if err != nil {
				return err
			}
			results[i] = *rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recompute all: %w", err)
	}

	s.logger.Info("Wallet balances recomputed", "wallets", len(ids))
	return results, nil
}
