package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// StatsStore defines the database methods needed by the dashboard stats.
// Satisfied by *database.Queries; narrow interface for testability.
type StatsStore interface {
	CountOrders(ctx context.Context) (int64, error)
	CountMenuItems(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// StatsHandler serves the dashboard landing counters.
type StatsHandler struct {
	store StatsStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store StatsStore) *StatsHandler {
	return &StatsHandler{store: store}
}

// RegisterRoutes registers the stats endpoint. Expected to be mounted at /admin/stats.
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

type statsResponse struct {
	OrdersCount    int64 `json:"ordersCount"`
	MenuItemsCount int64 `json:"menuItemsCount"`
	UsersCount     int64 `json:"usersCount"`
}

// Get returns the three counters, queried concurrently.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var resp statsResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.OrdersCount, err = h.store.CountOrders(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.MenuItemsCount, err = h.store.CountMenuItems(ctx)
		return err
	})
	g.Go(func() (err error) {
		resp.UsersCount, err = h.store.CountUsers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternal(w, "get stats", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
