// internal/repository/category_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
)

// CategoryRepository defines the interface for category tree operations.
type CategoryRepository interface {
	// CreateCategory inserts a category. A sibling title collision yields util.ErrDuplicateCategory.
	CreateCategory(ctx context.Context, q DBExecutor, category *domain.Category) error
	GetCategoryByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Category, error)
	// LockOwnerTree serializes structural changes to one owner's tree for the
	// rest of the current transaction.
	LockOwnerTree(ctx context.Context, q DBExecutor, ownerID int64) error
	// FindSibling returns the category titled title under parentID (nil for roots).
	FindSibling(ctx context.Context, q DBExecutor, ownerID int64, parentID *uuid.UUID, title string) (*domain.Category, error)
	ListCategoriesByOwner(ctx context.Context, q DBExecutor, ownerID int64) ([]domain.Category, error)
	CountChildren(ctx context.Context, q DBExecutor, id uuid.UUID) (int, error)
	// MoveSubtree rewrites path and level of every node under oldPath, the root included.
	MoveSubtree(ctx context.Context, q DBExecutor, ownerID int64, oldPath, newPath string, levelDelta int) (int64, error)
	SetParent(ctx context.Context, q DBExecutor, id uuid.UUID, parentID *uuid.UUID) error
	UpdateCategoryDetails(ctx context.Context, q DBExecutor, category *domain.Category) error
	DeleteCategory(ctx context.Context, q DBExecutor, id uuid.UUID) error
}
