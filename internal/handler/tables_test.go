package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/handler"
)

type mockTableStore struct {
	tables map[uuid.UUID]database.Table
	err    error
}

func (m *mockTableStore) GetTable(_ context.Context, id uuid.UUID) (database.Table, error) {
	if m.err != nil {
		return database.Table{}, m.err
	}
	t, ok := m.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func setupTableRouter(store *mockTableStore) *chi.Mux {
	h := handler.NewTableHandler(store)
	r := chi.NewRouter()
	r.Route("/public/tables", h.RegisterRoutes)
	return r
}

func TestTableGet_Valid(t *testing.T) {
	table := database.Table{ID: uuid.New(), BranchID: uuid.New(), Number: "T1", Seats: 4}
	r := setupTableRouter(&mockTableStore{tables: map[uuid.UUID]database.Table{table.ID: table}})

	rr := doRequest(t, r, "GET", "/public/tables/"+table.ID.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["number"] != "T1" || resp["branchId"] != table.BranchID.String() {
		t.Errorf("response: got %v", resp)
	}
}

func TestTableGet_NotFound(t *testing.T) {
	r := setupTableRouter(&mockTableStore{})

	for _, id := range []string{uuid.New().String(), "T1"} {
		rr := doRequest(t, r, "GET", "/public/tables/"+id, "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s: status got %d, want %d", id, rr.Code, http.StatusNotFound)
		}
	}
}

func TestTableGet_StoreError(t *testing.T) {
	r := setupTableRouter(&mockTableStore{err: errors.New("boom")})

	rr := doRequest(t, r, "GET", "/public/tables/"+uuid.New().String(), "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
