// internal/api/handler/category.go
package handler

import (
	"iter"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"family-ledger/internal/api/types"
	"family-ledger/internal/domain"
	"family-ledger/internal/service"
)

// CategoryHandler serves the owner's category tree.
type CategoryHandler struct {
	responder
	service service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{responder: responder{logger: logger}, service: svc}
}

// CreateCategoryRequest represents the request body for a new category.
// A null parent_id creates a root.
type CreateCategoryRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	category, err := h.service.Create(r.Context(), OwnerID(r.Context()), req.Title, req.Description, req.ParentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, category)
}

// GetTree returns every category in display order: roots by title, each
// followed by its subtree.
// GET /categories
func (h *CategoryHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	h.respondWithSeq(w)(h.service.Flatten(r.Context(), OwnerID(r.Context())))
}

// GetRoots handles GET /categories/roots
func (h *CategoryHandler) GetRoots(w http.ResponseWriter, r *http.Request) {
	h.respondWithSeq(w)(h.service.Roots(r.Context(), OwnerID(r.Context())))
}

// GetCategory handles GET /categories/{categoryID}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	category, err := h.service.Get(r.Context(), OwnerID(r.Context()), id)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, category)
}

// GetChildren handles GET /categories/{categoryID}/children
func (h *CategoryHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSeq(w)(h.service.ChildrenOf(r.Context(), OwnerID(r.Context()), id))
}

// GetAncestors lists the parent chain, nearest first.
// GET /categories/{categoryID}/ancestors
func (h *CategoryHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithSeq(w)(h.service.AncestorsOf(r.Context(), OwnerID(r.Context()), id))
}

// UpdateCategoryRequest represents the request body for renaming a category.
type UpdateCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateCategory handles PUT /categories/{categoryID}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req UpdateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	category, err := h.service.Update(r.Context(), OwnerID(r.Context()), id, req.Title, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, category)
}

// MoveCategoryRequest names the new parent; null moves the category to the root.
type MoveCategoryRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// MoveCategory handles POST /categories/{categoryID}/move
func (h *CategoryHandler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req MoveCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	category, err := h.service.Move(r.Context(), OwnerID(r.Context()), id, req.ParentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/{categoryID}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "categoryID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), OwnerID(r.Context()), id); err != nil {
		h.respondWithError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWithSeq writes the result of a tree traversal as a list.
func (h *CategoryHandler) respondWithSeq(w http.ResponseWriter) func(iter.Seq[domain.Category], error) {
	return func(seq iter.Seq[domain.Category], err error) {
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		h.respondWithJSON(w, http.StatusOK, types.NewListResponse(slices.Collect(seq)))
	}
}
