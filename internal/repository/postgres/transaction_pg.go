// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

const transactionColumns = `id, owner_id, wallet_id, category_id, t_type, amount, tax, description, occurred_on, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (id, owner_id, wallet_id, category_id, t_type, amount, tax, description, occurred_on, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.OwnerID,
		transaction.WalletID,
		transaction.CategoryID,
		transaction.Type,
		transaction.Amount,
		transaction.Tax,
		transaction.Description,
		transaction.OccurredOn,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	)
	if err != nil {
		return mapTransactionWriteError("create transaction", err)
	}
	return nil
}

// GetTransactionByID retrieves a transaction by its ID.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
}

// GetTransactionByIDForUpdate retrieves a transaction and locks its row.
func (r *TransactionRepository) GetTransactionByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Transaction, error) {
	return r.getOne(ctx, q, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepository) getOne(ctx context.Context, q repository.DBExecutor, query string, id uuid.UUID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	if err := q.GetContext(ctx, &transaction, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID %s: %w", id, err)
	}
	return &transaction, nil
}

// UpdateTransaction rewrites every mutable column of a transaction.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `UPDATE transactions
              SET wallet_id = $1, category_id = $2, t_type = $3, amount = $4, tax = $5,
                  description = $6, occurred_on = $7, updated_at = $8
              WHERE id = $9`
	result, err := q.ExecContext(ctx, query,
		transaction.WalletID,
		transaction.CategoryID,
		transaction.Type,
		transaction.Amount,
		transaction.Tax,
		transaction.Description,
		transaction.OccurredOn,
		transaction.UpdatedAt,
		transaction.ID,
	)
	if err != nil {
		return mapTransactionWriteError("update transaction", err)
	}
	return expectOneRow(result, util.ErrTransactionNotFound)
}

// DeleteTransaction removes a transaction; its line items go with it.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return expectOneRow(result, util.ErrTransactionNotFound)
}

func mapTransactionWriteError(op string, err error) error {
	switch {
	case db.IsForeignKeyViolation(err, constraintTransactionWallet):
		return util.ErrWalletNotFound
	case db.IsForeignKeyViolation(err, constraintTransactionCategory):
		return util.ErrCategoryNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// ListTransactions retrieves a paginated list of the owner's transactions.
// It performs two queries: one for the page and one for the total count.
func (r *TransactionRepository) ListTransactions(ctx context.Context, q repository.DBExecutor, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	where, args := transactionFilterClause(filter)

	transactions := []domain.Transaction{}
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)+1, len(args)+2)
	pageArgs := append(append([]interface{}{}, args...), filter.Limit, filter.Offset)
	if err := q.SelectContext(ctx, &transactions, query, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions of owner %d: %w", filter.OwnerID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE ` + where
	if err := q.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count of owner %d: %w", filter.OwnerID, err)
	}

	return transactions, totalCount, nil
}

// transactionFilterClause builds the WHERE clause of a listing and its positional arguments.
func transactionFilterClause(filter domain.TransactionFilter) (string, []interface{}) {
	conds := []string{"owner_id = $1"}
	args := []interface{}{filter.OwnerID}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.WalletID != nil {
		add("wallet_id = $%d", *filter.WalletID)
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if filter.Type != "" {
		add("t_type = $%d", string(filter.Type))
	}
	if filter.From != nil {
		add("occurred_on >= $%d", domain.TruncateToDate(*filter.From))
	}
	if filter.To != nil {
		add("occurred_on <= $%d", domain.TruncateToDate(*filter.To))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		add("description ILIKE '%%' || $%d || '%%'", escapeLike(search))
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// CountByWallet returns how many transactions reference a wallet.
func (r *TransactionRepository) CountByWallet(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (int, error) {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID); err != nil {
		return 0, fmt.Errorf("failed to count transactions of wallet %s: %w", walletID, err)
	}
	return count, nil
}

// CountByCategory returns how many transactions reference a category.
func (r *TransactionRepository) CountByCategory(ctx context.Context, q repository.DBExecutor, categoryID uuid.UUID) (int, error) {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID); err != nil {
		return 0, fmt.Errorf("failed to count transactions of category %s: %w", categoryID, err)
	}
	return count, nil
}

type typeTotals struct {
	Income  decimal.Decimal `db:"income"`
	Expense decimal.Decimal `db:"expense"`
}

// SumByWallet returns the income and expense totals of one wallet.
func (r *TransactionRepository) SumByWallet(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var totals typeTotals
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE t_type = 'IN'), 0) AS income,
			COALESCE(SUM(amount) FILTER (WHERE t_type = 'EX'), 0) AS expense
		FROM transactions
		WHERE wallet_id = $1`
	if err := q.GetContext(ctx, &totals, query, walletID); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum transactions of wallet %s: %w", walletID, err)
	}
	return totals.Income, totals.Expense, nil
}

// Stats aggregates the owner's transactions with occurred_on between from and to inclusive.
func (r *TransactionRepository) Stats(ctx context.Context, q repository.DBExecutor, ownerID int64, from, to time.Time) (*domain.TransactionStats, error) {
	var stats domain.TransactionStats
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE t_type = 'IN'), 0) AS total_income,
			COALESCE(SUM(amount) FILTER (WHERE t_type = 'EX'), 0) AS total_expense,
			COUNT(*) AS transaction_count
		FROM transactions
		WHERE owner_id = $1 AND occurred_on BETWEEN $2 AND $3`
	if err := q.GetContext(ctx, &stats, query, ownerID, domain.TruncateToDate(from), domain.TruncateToDate(to)); err != nil {
		return nil, fmt.Errorf("failed to compute transaction stats of owner %d: %w", ownerID, err)
	}
	stats.Net = stats.TotalIncome.Sub(stats.TotalExpense)
	return &stats, nil
}
