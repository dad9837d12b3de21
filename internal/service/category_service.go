// internal/service/category_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"family-ledger/internal/domain"
	"family-ledger/internal/repository"
	"family-ledger/internal/util"
)

// CategoryService defines the interface for the per-owner category tree.
type CategoryService interface {
	Create(ctx context.Context, ownerID int64, title, description string, parentID *uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Category, error)
	// Move re-parents a category together with its subtree. A nil parent makes it a root.
	Move(ctx context.Context, ownerID int64, id uuid.UUID, newParentID *uuid.UUID) (*domain.Category, error)
	Delete(ctx context.Context, ownerID int64, id uuid.UUID) error
	Get(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Category, error)

	Roots(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error)
	ChildrenOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error)
	AncestorsOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error)
	Flatten(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error)
}

type categoryService struct {
	dbExecutor      repository.DBExecutor
	txRunner        *TxRunner
	categoryRepo    repository.CategoryRepository
	transactionRepo repository.TransactionRepository
	logger          *slog.Logger
}

// NewCategoryService creates a new instance of CategoryService.
func NewCategoryService(
	dbExecutor repository.DBExecutor,
	txRunner *TxRunner,
	categoryRepo repository.CategoryRepository,
	transactionRepo repository.TransactionRepository,
) CategoryService {
	return &categoryService{
		dbExecutor:      dbExecutor,
		txRunner:        txRunner,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		logger:          util.ComponentLogger("category"),
	}
}

func (s *categoryService) Create(ctx context.Context, ownerID int64, title, description string, parentID *uuid.UUID) (*domain.Category, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = domain.NormalizeDescription(description)
	if err != nil {
		return nil, err
	}

	var category *domain.Category
	err = s.txRunner.Run(ctx, "create category", func(q repository.DBExecutor) error {
		if err := s.categoryRepo.LockOwnerTree(ctx, q, ownerID); err != nil {
			return err
		}

		var parent *domain.Category
		if parentID != nil {
			parent, err = s.categoryRepo.GetCategoryByID(ctx, q, *parentID)
			if err != nil {
				return fmt.Errorf("create category: parent %s: %w", *parentID, err)
			}
			if parent.OwnerID != ownerID {
				return fmt.Errorf("create category: parent %s: %w", *parentID, util.ErrInvalidParent)
			}
		}

		if err := s.ensureTitleFree(ctx, q, ownerID, parentID, title, uuid.Nil); err != nil {
			return fmt.Errorf("create category: %w", err)
		}

		category = domain.NewCategory(ownerID, title, description, parent)
		if err := s.categoryRepo.CreateCategory(ctx, q, category); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Category created", "owner_id", ownerID, "category_id", category.ID, "level", category.Level)
	return category, nil
}

// ensureTitleFree fails with ErrDuplicateCategory when another node than self
// already carries title under parentID.
func (s *categoryService) ensureTitleFree(ctx context.Context, q repository.DBExecutor, ownerID int64, parentID *uuid.UUID, title string, self uuid.UUID) error {
	sibling, err := s.categoryRepo.FindSibling(ctx, q, ownerID, parentID, title)
	switch {
	case errors.Is(err, util.ErrNotFound):
		return nil
	case err != nil:
		return err
	case sibling.ID != self:
		return util.ErrDuplicateCategory
	}
	return nil
}

// getOwned loads a category and checks it belongs to ownerID.
func (s *categoryService) getOwned(ctx context.Context, q repository.DBExecutor, ownerID int64, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.GetCategoryByID(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if category.OwnerID != ownerID {
		return nil, util.ErrOwnership
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, ownerID int64, id uuid.UUID, title, description string) (*domain.Category, error) {
	title, err := domain.NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	description, err = domain.NormalizeDescription(description)
	if err != nil {
		return nil, err
	}

	var category *domain.Category
	err = s.txRunner.Run(ctx, "update category", func(q repository.DBExecutor) error {
		if err := s.categoryRepo.LockOwnerTree(ctx, q, ownerID); err != nil {
			return err
		}
		category, err = s.getOwned(ctx, q, ownerID, id)
		if err != nil {
			return fmt.Errorf("update category %s: %w", id, err)
		}
		if category.Title != title {
			if err := s.ensureTitleFree(ctx, q, ownerID, category.ParentID, title, category.ID); err != nil {
				return fmt.Errorf("update category %s: %w", id, err)
			}
		}

		category.Title = title
		category.Description = description
		category.UpdatedAt = time.Now().UTC()
		if err := s.categoryRepo.UpdateCategoryDetails(ctx, q, category); err != nil {
			return fmt.Errorf("update category %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Move(ctx context.Context, ownerID int64, id uuid.UUID, newParentID *uuid.UUID) (*domain.Category, error) {
	var (
		category *domain.Category
		moved    int64
	)
	err := s.txRunner.Run(ctx, "move category", func(q repository.DBExecutor) error {
		if err := s.categoryRepo.LockOwnerTree(ctx, q, ownerID); err != nil {
			return err
		}
		var err error
		category, err = s.getOwned(ctx, q, ownerID, id)
		if err != nil {
			return fmt.Errorf("move category %s: %w", id, err)
		}
		if domain.SameParent(category.ParentID, newParentID) {
			moved = 0
			return nil
		}

		parentPath, newLevel := "", 0
		if newParentID != nil {
			if *newParentID == id {
				return fmt.Errorf("move category %s: %w", id, util.ErrCycleDetected)
			}
			parent, err := s.categoryRepo.GetCategoryByID(ctx, q, *newParentID)
			if err != nil {
				return fmt.Errorf("move category %s: parent %s: %w", id, *newParentID, err)
			}
			if parent.OwnerID != ownerID {
				return fmt.Errorf("move category %s: parent %s: %w", id, *newParentID, util.ErrInvalidParent)
			}
			if domain.IsWithin(parent.Path, category.Path) {
				return fmt.Errorf("move category %s under %s: %w", id, *newParentID, util.ErrCycleDetected)
			}
			parentPath, newLevel = parent.Path, parent.Level+1
		}

		if err := s.ensureTitleFree(ctx, q, ownerID, newParentID, category.Title, category.ID); err != nil {
			return fmt.Errorf("move category %s: %w", id, err)
		}

		if err := s.categoryRepo.SetParent(ctx, q, id, newParentID); err != nil {
			return fmt.Errorf("move category %s: %w", id, err)
		}
		newPath := domain.ChildPath(parentPath, id)
		levelDelta := newLevel - category.Level
		moved, err = s.categoryRepo.MoveSubtree(ctx, q, ownerID, category.Path, newPath, levelDelta)
		if err != nil {
			return fmt.Errorf("move category %s: %w", id, err)
		}

		category.ParentID = newParentID
		category.Path = newPath
		category.Level = newLevel
		category.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if moved > 0 {
		s.logger.Info("Category moved", "owner_id", ownerID, "category_id", id, "level", category.Level, "subtree_size", moved)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	err := s.txRunner.Run(ctx, "delete category", func(q repository.DBExecutor) error {
		if err := s.categoryRepo.LockOwnerTree(ctx, q, ownerID); err != nil {
			return err
		}
		if _, err := s.getOwned(ctx, q, ownerID, id); err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}

		children, err := s.categoryRepo.CountChildren(ctx, q, id)
		if err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		if children > 0 {
			return fmt.Errorf("delete category %s: %w", id, util.NewHasChildrenError(children))
		}

		refs, err := s.transactionRepo.CountByCategory(ctx, q, id)
		if err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("delete category %s: %w", id, util.NewInUseError("category", refs))
		}

		if err := s.categoryRepo.DeleteCategory(ctx, q, id); err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Category deleted", "owner_id", ownerID, "category_id", id)
	return nil
}

func (s *categoryService) Get(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Category, error) {
	category, err := s.getOwned(ctx, s.dbExecutor, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return category, nil
}

// forest loads a snapshot of the owner's tree. Traversals over it are lazy
// and can be consumed any number of times.
func (s *categoryService) forest(ctx context.Context, ownerID int64) (*domain.CategoryForest, error) {
	categories, err := s.categoryRepo.ListCategoriesByOwner(ctx, s.dbExecutor, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.NewCategoryForest(categories), nil
}

func (s *categoryService) Roots(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error) {
	f, err := s.forest(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}
	return f.Roots(), nil
}

func (s *categoryService) ChildrenOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error) {
	f, err := s.ownedForest(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("list children of category %s: %w", id, err)
	}
	return f.Children(id), nil
}

func (s *categoryService) AncestorsOf(ctx context.Context, ownerID int64, id uuid.UUID) (iter.Seq[domain.Category], error) {
	f, err := s.ownedForest(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("list ancestors of category %s: %w", id, err)
	}
	return f.Ancestors(id), nil
}

func (s *categoryService) Flatten(ctx context.Context, ownerID int64) (iter.Seq[domain.Category], error) {
	f, err := s.forest(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("flatten categories: %w", err)
	}
	return f.Flatten(), nil
}

// ownedForest loads the owner's tree after checking id is one of its nodes.
func (s *categoryService) ownedForest(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.CategoryForest, error) {
	if _, err := s.getOwned(ctx, s.dbExecutor, ownerID, id); err != nil {
		return nil, err
	}
	return s.forest(ctx, ownerID)
}
