// internal/repository/postgres/category_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
	"family-ledger/pkg/db"
)

const categoryColumns = `id, owner_id, title, description, parent_id, level, path, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository for PostgreSQL.
//
// Every node stores its materialized path ("/<root>/.../<self>/") so subtree
// membership is a prefix match and a move rewrites the subtree in one UPDATE.
type CategoryRepository struct{}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository() repository.CategoryRepository {
	return &CategoryRepository{}
}

// CreateCategory inserts a new category.
func (r *CategoryRepository) CreateCategory(ctx context.Context, q repository.DBExecutor, category *domain.Category) error {
	query := `INSERT INTO categories (id, owner_id, title, description, parent_id, level, path, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		category.ID,
		category.OwnerID,
		category.Title,
		category.Description,
		category.ParentID,
		category.Level,
		category.Path,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err, constraintCategorySiblingTitle) {
			return util.ErrDuplicateCategory
		}
		if db.IsForeignKeyViolation(err, constraintCategoryParent) {
			return util.ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategoryByID retrieves a category by its ID.
func (r *CategoryRepository) GetCategoryByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	if err := q.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

// LockOwnerTree takes a transaction-scoped advisory lock on the owner's tree.
func (r *CategoryRepository) LockOwnerTree(ctx context.Context, q repository.DBExecutor, ownerID int64) error {
	key := "categories:" + strconv.FormatInt(ownerID, 10)
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("failed to lock category tree of owner %d: %w", ownerID, err)
	}
	return nil
}

// FindSibling returns the owner's category with the given title under parentID.
func (r *CategoryRepository) FindSibling(ctx context.Context, q repository.DBExecutor, ownerID int64, parentID *uuid.UUID, title string) (*domain.Category, error) {
	var category domain.Category
	query := `SELECT ` + categoryColumns + ` FROM categories
              WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2::uuid AND title = $3`
	if err := q.GetContext(ctx, &category, query, ownerID, parentID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find sibling category %q: %w", title, err)
	}
	return &category, nil
}

// ListCategoriesByOwner returns all of the owner's categories, shallowest first.
func (r *CategoryRepository) ListCategoriesByOwner(ctx context.Context, q repository.DBExecutor, ownerID int64) ([]domain.Category, error) {
	categories := []domain.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = $1 ORDER BY level, title, id`
	if err := q.SelectContext(ctx, &categories, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list categories of owner %d: %w", ownerID, err)
	}
	return categories, nil
}

// CountChildren returns the number of direct children of a category.
func (r *CategoryRepository) CountChildren(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (int, error) {
	var count int
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to count children of category %s: %w", id, err)
	}
	return count, nil
}

// MoveSubtree replaces the oldPath prefix with newPath and shifts the level of
// every node in the subtree rooted at oldPath.
func (r *CategoryRepository) MoveSubtree(ctx context.Context, q repository.DBExecutor, ownerID int64, oldPath, newPath string, levelDelta int) (int64, error) {
	query := `UPDATE categories
              SET path = $3::text || substr(path, $4), level = level + $5, updated_at = $6
              WHERE owner_id = $1 AND path LIKE $2::text || '%'`
	result, err := q.ExecContext(ctx, query, ownerID, oldPath, newPath, len(oldPath)+1, levelDelta, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to move category subtree %s: %w", oldPath, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after moving subtree %s: %w", oldPath, err)
	}
	return rowsAffected, nil
}

// SetParent points a category at a new parent. Path and level are maintained by MoveSubtree.
func (r *CategoryRepository) SetParent(ctx context.Context, q repository.DBExecutor, id uuid.UUID, parentID *uuid.UUID) error {
	query := `UPDATE categories SET parent_id = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, parentID, time.Now().UTC(), id)
	if err != nil {
		if db.IsUniqueViolation(err, constraintCategorySiblingTitle) {
			return util.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to set parent of category %s: %w", id, err)
	}
	return expectOneRow(result, util.ErrCategoryNotFound)
}

// UpdateCategoryDetails writes title and description.
func (r *CategoryRepository) UpdateCategoryDetails(ctx context.Context, q repository.DBExecutor, category *domain.Category) error {
	query := `UPDATE categories SET title = $1, description = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, category.Title, category.Description, category.UpdatedAt, category.ID)
	if err != nil {
		if db.IsUniqueViolation(err, constraintCategorySiblingTitle) {
			return util.ErrDuplicateCategory
		}
		return fmt.Errorf("failed to update category %s: %w", category.ID, err)
	}
	return expectOneRow(result, util.ErrCategoryNotFound)
}

// DeleteCategory removes a leaf category that no transaction references.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		switch {
		case db.IsForeignKeyViolation(err, constraintCategoryParent):
			return fmt.Errorf("failed to delete category %s: %w", id, util.ErrHasChildren)
		case db.IsForeignKeyViolation(err, constraintTransactionCategory):
			return fmt.Errorf("failed to delete category %s: %w", id, util.ErrInUse)
		}
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	return expectOneRow(result, util.ErrCategoryNotFound)
}
