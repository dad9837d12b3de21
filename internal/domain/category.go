// internal/domain/category.go
package domain

import (
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is a node of an owner's category tree.
//
// Level and Path are materialized from the parent chain: Level is the depth
// (roots are 0) and Path lists the ids from the root down to the node itself,
// e.g. "/<root>/<child>/". They change only when the tree structure changes.
type Category struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	OwnerID     int64      `db:"owner_id" json:"owner_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	ParentID    *uuid.UUID `db:"parent_id" json:"parent_id"`
	Level       int        `db:"level" json:"level"`
	Path        string     `db:"path" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// NewCategory creates a category under parent, or a root when parent is nil.
func NewCategory(ownerID int64, title, description string, parent *Category) *Category {
	now := time.Now().UTC()
	c := &Category{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if parent != nil {
		parentID := parent.ID
		c.ParentID = &parentID
		c.Level = parent.Level + 1
		c.Path = ChildPath(parent.Path, c.ID)
	} else {
		c.Path = ChildPath("", c.ID)
	}
	return c
}

// ChildPath returns the materialized path of id placed under parentPath.
func ChildPath(parentPath string, id uuid.UUID) string {
	if parentPath == "" {
		parentPath = "/"
	}
	return parentPath + id.String() + "/"
}

// IsWithin reports whether the node at path lies in the subtree rooted at
// ancestorPath, the root itself included.
func IsWithin(path, ancestorPath string) bool {
	return ancestorPath != "" && strings.HasPrefix(path, ancestorPath)
}

// SameParent reports whether two optional parent ids point at the same node.
func SameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CategoryForest is an arena of one owner's categories keyed by id. Parents
// are referenced by id only. Children of every node are kept sorted by title,
// ties broken by id.
type CategoryForest struct {
	nodes    map[uuid.UUID]Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

// NewCategoryForest indexes categories. A node whose parent is not in the set
// is treated as a root.
func NewCategoryForest(categories []Category) *CategoryForest {
	f := &CategoryForest{
		nodes:    make(map[uuid.UUID]Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range categories {
		f.nodes[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID != nil {
			if _, ok := f.nodes[*c.ParentID]; ok {
				f.children[*c.ParentID] = append(f.children[*c.ParentID], c.ID)
				continue
			}
		}
		f.roots = append(f.roots, c.ID)
	}

	f.sortSiblings(f.roots)
	for _, ids := range f.children {
		f.sortSiblings(ids)
	}
	return f
}

func (f *CategoryForest) sortSiblings(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := f.nodes[ids[i]], f.nodes[ids[j]]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return CompareIDs(a.ID, b.ID) < 0
	})
}

// Len returns the number of nodes.
func (f *CategoryForest) Len() int { return len(f.nodes) }

// Get returns the node with the given id.
func (f *CategoryForest) Get(id uuid.UUID) (Category, bool) {
	c, ok := f.nodes[id]
	return c, ok
}

// Roots yields the top-level categories.
func (f *CategoryForest) Roots() iter.Seq[Category] {
	return f.yieldIDs(f.roots)
}

// Children yields the direct children of id.
func (f *CategoryForest) Children(id uuid.UUID) iter.Seq[Category] {
	return f.yieldIDs(f.children[id])
}

func (f *CategoryForest) yieldIDs(ids []uuid.UUID) iter.Seq[Category] {
	return func(yield func(Category) bool) {
		for _, id := range ids {
			if !yield(f.nodes[id]) {
				return
			}
		}
	}
}

// Ancestors yields the ancestors of id from the root down to its parent.
func (f *CategoryForest) Ancestors(id uuid.UUID) iter.Seq[Category] {
	return func(yield func(Category) bool) {
		var chain []uuid.UUID
		node, ok := f.nodes[id]
		for ok && node.ParentID != nil && len(chain) < len(f.nodes) {
			node, ok = f.nodes[*node.ParentID]
			if ok {
				chain = append(chain, node.ID)
			}
		}
		for i := len(chain) - 1; i >= 0; i-- {
			if !yield(f.nodes[chain[i]]) {
				return
			}
		}
	}
}

// Flatten yields every node in pre-order: each parent is immediately
// followed by its whole subtree, so Level can drive indentation directly.
func (f *CategoryForest) Flatten() iter.Seq[Category] {
	return func(yield func(Category) bool) {
		stack := make([]uuid.UUID, 0, len(f.nodes))
		for i := len(f.roots) - 1; i >= 0; i-- {
			stack = append(stack, f.roots[i])
		}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(f.nodes[id]) {
				return
			}
			kids := f.children[id]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, kids[i])
			}
		}
	}
}

// IsDescendant reports whether id lies strictly below ancestor.
func (f *CategoryForest) IsDescendant(id, ancestor uuid.UUID) bool {
	for a := range f.Ancestors(id) {
		if a.ID == ancestor {
			return true
		}
	}
	return false
}
