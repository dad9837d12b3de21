// internal/repository/postgres/line_item_pg.go
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
	"family-ledger/pkg/db"
)

const lineItemColumns = `id, transaction_id, amount, quantity, tax, created_at, updated_at`

// LineItemRepository implements repository.LineItemRepository for PostgreSQL.
type LineItemRepository struct{}

func NewLineItemRepository() repository.LineItemRepository {
	return &LineItemRepository{}
}

func (r *LineItemRepository) CreateLineItem(ctx context.Context, q repository.DBExecutor, item *domain.LineItem) error {
	query := `INSERT INTO transaction_line_items (id, transaction_id, amount, quantity, tax, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := q.ExecContext(ctx, query,
		item.ID,
		item.TransactionID,
		item.Amount,
		item.Quantity,
		item.Tax,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err, "") {
			return util.ErrTransactionNotFound
		}
		return fmt.Errorf("failed to create line item: %w", err)
	}
	return nil
}

func (r *LineItemRepository) GetLineItemByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.LineItem, error) {
	var item domain.LineItem
	query := `SELECT ` + lineItemColumns + ` FROM transaction_line_items WHERE id = $1`
	if err := q.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrLineItemNotFound
		}
		return nil, fmt.Errorf("failed to get line item by ID %s: %w", id, err)
	}
	return &item, nil
}

// ListByTransaction returns the lines of a transaction in insertion order.
func (r *LineItemRepository) ListByTransaction(ctx context.Context, q repository.DBExecutor, transactionID uuid.UUID) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	query := `SELECT ` + lineItemColumns + ` FROM transaction_line_items WHERE transaction_id = $1 ORDER BY created_at, id`
	if err := q.SelectContext(ctx, &items, query, transactionID); err != nil {
		return nil, fmt.Errorf("failed to list line items of transaction %s: %w", transactionID, err)
	}
	return items, nil
}

func (r *LineItemRepository) DeleteLineItem(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transaction_line_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete line item %s: %w", id, err)
	}
	return expectOneRow(result, util.ErrLineItemNotFound)
}
