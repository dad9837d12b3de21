// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

const walletColumns = `id, owner_id, title, currency_id, balance, description, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (id, owner_id, title, currency_id, balance, description, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		wallet.ID,
		wallet.OwnerID,
		wallet.Title,
		wallet.CurrencyID,
		wallet.Balance,
		wallet.Description,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err, constraintWalletCurrency) {
			return util.ErrCurrencyNotFound
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	return r.getOne(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
}

// GetWalletByIDForUpdate retrieves a wallet and locks its row until the surrounding transaction ends.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	return r.getOne(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
}

func (r *WalletRepository) getOne(ctx context.Context, q repository.DBExecutor, query string, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %s: %w", id, err)
	}
	return &wallet, nil
}

// ListWalletsByOwner returns the owner's wallets ordered by title.
func (r *WalletRepository) ListWalletsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 ORDER BY title, id`
	if err := q.SelectContext(ctx, &wallets, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list wallets of owner %d: %w", ownerID, err)
	}
	return wallets, nil
}

// ListWalletIDs returns the ids of every wallet in lock order.
func (r *WalletRepository) ListWalletIDs(ctx context.Context, q repository.DBExecutor) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := q.SelectContext(ctx, &ids, `SELECT id FROM wallets ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list wallet ids: %w", err)
	}
	return ids, nil
}

// UpdateWalletDetails writes title and description. The balance column is not touched.
func (r *WalletRepository) UpdateWalletDetails(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `UPDATE wallets SET title = $1, description = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, wallet.Title, wallet.Description, wallet.UpdatedAt, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %s: %w", wallet.ID, err)
	}
	return expectOneRow(result, util.ErrWalletNotFound)
}

// AdjustBalance adds delta to the stored balance of a specific wallet.
func (r *WalletRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %s: %w", walletID, err)
	}
	return expectOneRow(result, util.ErrWalletNotFound)
}

// SetBalance overwrites the stored balance of a specific wallet.
func (r *WalletRepository) SetBalance(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, balance, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to set wallet balance for ID %s: %w", walletID, err)
	}
	return expectOneRow(result, util.ErrWalletNotFound)
}

// DeleteWallet removes a wallet no transaction references.
func (r *WalletRepository) DeleteWallet(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err, constraintTransactionWallet) {
			return fmt.Errorf("failed to delete wallet %s: %w", id, util.ErrInUse)
		}
		return fmt.Errorf("failed to delete wallet %s: %w", id, err)
	}
	return expectOneRow(result, util.ErrWalletNotFound)
}

// TotalsByOwner sums the owner's wallet balances per currency.
func (r *WalletRepository) TotalsByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.WalletTotal, error) {
	totals := []domain.WalletTotal{}
	query := `
		SELECT w.currency_id, c.alpha_code, SUM(w.balance) AS total, COUNT(*) AS wallet_count
		FROM wallets w
		JOIN currencies c ON c.id = w.currency_id
		WHERE w.owner_id = $1
		GROUP BY w.currency_id, c.alpha_code
		ORDER BY c.alpha_code`
	if err := q.SelectContext(ctx, &totals, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to sum wallet balances of owner %d: %w", ownerID, err)
	}
	return totals, nil
}
