package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tablesidear/api/internal/database"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
}

// CategoryHandler lists menu categories.
type CategoryHandler struct {
	store CategoryStore
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterRoutes registers category endpoints on the given Chi router.
// Expected to be mounted at /admin/categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"nameAr"`
	SortOrder int32     `json:"sortOrder"`
}

// List returns active categories in display order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeInternal(w, "list categories", err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = categoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			NameAr:    c.NameAr,
			SortOrder: c.SortOrder,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
