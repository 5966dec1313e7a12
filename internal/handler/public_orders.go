package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/service"
	"github.com/tablesidear/api/internal/ws"
)

// PublicOrderServicer defines the service methods needed by the public order
// endpoints. Satisfied by *service.OrderService; narrow interface for testability.
type PublicOrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	GetPublicStatus(ctx context.Context, orderID uuid.UUID) (database.Order, error)
}

// EventPublisher pushes order events to live dashboards.
// Satisfied by *ws.Hub.
type EventPublisher interface {
	Publish(branchID uuid.UUID, eventType string, payload interface{})
}

// PublicOrderHandler serves the unauthenticated table-ordering endpoints.
type PublicOrderHandler struct {
	svc    PublicOrderServicer
	events EventPublisher
}

// NewPublicOrderHandler creates a new PublicOrderHandler.
func NewPublicOrderHandler(svc PublicOrderServicer, events EventPublisher) *PublicOrderHandler {
	return &PublicOrderHandler{svc: svc, events: events}
}

// RegisterRoutes registers public order endpoints on the given Chi router.
// Expected to be mounted at /public/orders.
func (h *PublicOrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableID string                   `json:"tableId"`
	Items   []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string  `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Notes      *string `json:"notes"`
}

type orderConfirmationResponse struct {
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
	Total   string    `json:"total"`
}

type publicOrderStatusResponse struct {
	OrderID   uuid.UUID `json:"orderId"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderCreatedEvent struct {
	OrderID     uuid.UUID  `json:"orderId"`
	OrderNumber string     `json:"orderNumber"`
	TableID     *uuid.UUID `json:"tableId"`
	Status      string     `json:"status"`
	Total       string     `json:"total"`
	ItemCount   int        `json:"itemCount"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// --- Handlers ---

// Create handles POST /public/orders.
func (h *PublicOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svcReq := service.CreateOrderRequest{
		TableID: req.TableID,
		Items:   make([]service.CreateOrderItemRequest, len(req.Items)),
	}
	for i, item := range req.Items {
		svcReq.Items[i] = service.CreateOrderItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Notes:      item.Notes,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	o := result.Order
	h.events.Publish(o.BranchID, ws.EventOrderCreated, orderCreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		TableID:     uuidPtr(o.TableID.Bytes, o.TableID.Valid),
		Status:      string(o.Status),
		Total:       numericToString(o.Total),
		ItemCount:   len(result.Items),
		CreatedAt:   o.CreatedAt,
	})

	writeJSON(w, http.StatusCreated, orderConfirmationResponse{
		OrderID: o.ID,
		Status:  string(o.Status),
		Total:   numericToString(o.Total),
	})
}

// Get handles GET /public/orders/{id}.
func (h *PublicOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// Not a key we could have issued.
		writeError(w, http.StatusNotFound, service.ErrOrderNotFound.Error())
		return
	}

	order, err := h.svc.GetPublicStatus(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, "get public order status", err)
		return
	}

	writeJSON(w, http.StatusOK, publicOrderStatusResponse{
		OrderID:   order.ID,
		Status:    string(order.Status),
		Total:     numericToString(order.Total),
		CreatedAt: order.CreatedAt,
	})
}

func uuidPtr(b [16]byte, valid bool) *uuid.UUID {
	if !valid {
		return nil
	}
	id := uuid.UUID(b)
	return &id
}
