// internal/service/line_item_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

// LineItemService manages the receipt lines of a transaction. Lines are
// informational: they never change a wallet balance.
type LineItemService interface {
	AddLine(ctx context.Context, ownerID int64, transactionID uuid.UUID, amount decimal.Decimal, quantity int, tax decimal.Decimal) (*domain.LineItem, error)
	ListLines(ctx context.Context, ownerID int64, transactionID uuid.UUID) ([]domain.LineItem, error)
	DeleteLine(ctx context.Context, ownerID int64, transactionID, lineID uuid.UUID) error
}

type lineItemService struct {
	dbExecutor      repository.DBExecutor
	transactionRepo repository.TransactionRepository
	lineItemRepo    repository.LineItemRepository
	logger          *slog.Logger
}

func NewLineItemService(
	dbExecutor repository.DBExecutor,
	transactionRepo repository.TransactionRepository,
	lineItemRepo repository.LineItemRepository,
) LineItemService {
	return &lineItemService{
		dbExecutor:      dbExecutor,
		transactionRepo: transactionRepo,
		lineItemRepo:    lineItemRepo,
		logger:          util.ComponentLogger("line-items"),
	}
}

func (s *lineItemService) AddLine(ctx context.Context, ownerID int64, transactionID uuid.UUID, amount decimal.Decimal, quantity int, tax decimal.Decimal) (*domain.LineItem, error) {
	if quantity < 1 || quantity > domain.MaxLineQuantity {
		return nil, util.NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", domain.MaxLineQuantity))
	}
	amount, err := domain.NormalizeAmount("amount", amount, false)
	if err != nil {
		return nil, err
	}
	tax, err = domain.NormalizeTax("tax", tax)
	if err != nil {
		return nil, err
	}

	if err := s.checkTransaction(ctx, ownerID, transactionID); err != nil {
		return nil, fmt.Errorf("add line item: %w", err)
	}

	item := domain.NewLineItem(transactionID, amount, quantity, tax)
	if err := s.lineItemRepo.CreateLineItem(ctx, s.dbExecutor, item); err != nil {
		return nil, fmt.Errorf("add line item: %w", err)
	}

	s.logger.Debug("Line item added", "transaction_id", transactionID, "line_item_id", item.ID)
	return item, nil
}

func (s *lineItemService) ListLines(ctx context.Context, ownerID int64, transactionID uuid.UUID) ([]domain.LineItem, error) {
	if err := s.checkTransaction(ctx, ownerID, transactionID); err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	items, err := s.lineItemRepo.ListByTransaction(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	return items, nil
}

func (s *lineItemService) DeleteLine(ctx context.Context, ownerID int64, transactionID, lineID uuid.UUID) error {
	if err := s.checkTransaction(ctx, ownerID, transactionID); err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	item, err := s.lineItemRepo.GetLineItemByID(ctx, s.dbExecutor, lineID)
	if err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	if item.TransactionID != transactionID {
		return fmt.Errorf("delete line item %s: %w", lineID, util.ErrLineItemNotFound)
	}
	if err := s.lineItemRepo.DeleteLineItem(ctx, s.dbExecutor, lineID); err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	return nil
}

func (s *lineItemService) checkTransaction(ctx context.Context, ownerID int64, transactionID uuid.UUID) error {
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return err
	}
	if transaction.OwnerID != ownerID {
		return fmt.Errorf("transaction %s: %w", transactionID, util.ErrOwnership)
	}
	return nil
}
