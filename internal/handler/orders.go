package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/service"
	"github.com/tablesidear/api/internal/ws"
	"golang.org/x/sync/errgroup"
)

const maxOrderPageSize = 100

// OrderServicer defines the service methods needed by the admin order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next database.OrderStatus) (*service.StatusUpdate, error)
}

// OrderListStore defines the database methods needed by the order list.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderListStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error)
	CountOrders(ctx context.Context) (int64, error)
}

// OrderHandler handles admin order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	store  OrderListStore
	events EventPublisher
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderListStore, events EventPublisher) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, events: events}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /admin/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderSummaryResponse struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"orderNumber"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customerName"`
	Total        string    `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

type orderDetailResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	TableID     *uuid.UUID          `json:"tableId"`
	Type        string              `json:"type"`
	Status      string              `json:"status"`
	Subtotal    string              `json:"subtotal"`
	Total       string              `json:"total"`
	CreatedAt   time.Time           `json:"createdAt"`
	Items       []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID           uuid.UUID            `json:"id"`
	MenuItemID   *uuid.UUID           `json:"menuItemId"`
	Quantity     int32                `json:"quantity"`
	Price        string               `json:"price"`
	Subtotal     string               `json:"subtotal"`
	Notes        *string              `json:"notes"`
	ItemSnapshot service.ItemSnapshot `json:"itemSnapshot"`
}

type statusUpdateResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- Handlers ---

// List handles GET /admin/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r, maxOrderPageSize)

	var (
		rows  []database.ListOrdersRow
		total int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		rows, err = h.store.ListOrders(ctx, database.ListOrdersParams{
			Limit:  int32(limit),
			Offset: int32((page - 1) * limit),
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.store.CountOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternal(w, "list orders", err)
		return
	}

	data := make([]orderSummaryResponse, len(rows))
	for i, o := range rows {
		data[i] = orderSummaryResponse{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			Type:         string(o.Type),
			Status:       string(o.Status),
			CustomerName: o.CustomerName,
			Total:        numericToString(o.Total),
			CreatedAt:    o.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, pageResponse{Data: data, Meta: newPageMeta(total, page, limit)})
}

// Get handles GET /admin/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrOrderNotFound.Error())
		return
	}

	detail, err := h.svc.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}

	o := detail.Order
	resp := orderDetailResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		TableID:     uuidPtr(o.TableID.Bytes, o.TableID.Valid),
		Type:        string(o.Type),
		Status:      string(o.Status),
		Subtotal:    numericToString(o.Subtotal),
		Total:       numericToString(o.Total),
		CreatedAt:   o.CreatedAt,
		Items:       make([]orderItemResponse, len(detail.Items)),
	}
	for i, it := range detail.Items {
		resp.Items[i] = orderItemResponse{
			ID:           it.ID,
			MenuItemID:   uuidPtr(it.MenuItemID.Bytes, it.MenuItemID.Valid),
			Quantity:     it.Quantity,
			Price:        numericToString(it.Price),
			Subtotal:     numericToString(it.Subtotal),
			Notes:        textPtr(it.Notes),
			ItemSnapshot: service.DecodeSnapshot(it.ItemSnapshot),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateStatus handles PATCH /admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, service.ErrOrderNotFound.Error())
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Status = strings.TrimSpace(req.Status)
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	next := database.OrderStatus(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), orderID, next)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	resp := statusUpdateResponse{
		ID:        updated.ID,
		Status:    string(updated.Status),
		UpdatedAt: updated.UpdatedAt,
	}
	h.events.Publish(updated.BranchID, ws.EventOrderStatusUpdated, resp)

	writeJSON(w, http.StatusOK, resp)
}
