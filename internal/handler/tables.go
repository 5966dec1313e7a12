package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tablesidear/api/internal/database"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
}

// TableHandler resolves the table a QR code points at.
type TableHandler struct {
	store TableStore
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore) *TableHandler {
	return &TableHandler{store: store}
}

// RegisterRoutes registers table endpoints. Expected to be mounted at /public/tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
}

type tableResponse struct {
	ID       uuid.UUID `json:"id"`
	Number   string    `json:"number"`
	BranchID uuid.UUID `json:"branchId"`
}

// Get handles GET /public/tables/{id}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeInternal(w, "get table", err)
		return
	}

	writeJSON(w, http.StatusOK, tableResponse{
		ID:       table.ID,
		Number:   table.Number,
		BranchID: table.BranchID,
	})
}
