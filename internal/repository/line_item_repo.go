// internal/repository/line_item_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
)

// LineItemRepository defines the interface for transaction line items.
type LineItemRepository interface {
	CreateLineItem(ctx context.Context, q DBExecutor, item *domain.LineItem) error
	GetLineItemByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.LineItem, error)
	ListByTransaction(ctx context.Context, q DBExecutor, transactionID uuid.UUID) ([]domain.LineItem, error)
	DeleteLineItem(ctx context.Context, q DBExecutor, id uuid.UUID) error
}
