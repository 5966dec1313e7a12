package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/handler"
	"github.com/tablesidear/api/internal/service"
	"github.com/tablesidear/api/internal/ws"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	detailFn       func(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error)
	updateStatusFn func(ctx context.Context, orderID uuid.UUID, next database.OrderStatus) (*service.StatusUpdate, error)
}

func (m *mockOrderService) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*service.OrderDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, orderID)
	}
	return nil, service.ErrOrderNotFound
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next database.OrderStatus) (*service.StatusUpdate, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, orderID, next)
	}
	return nil, service.ErrOrderNotFound
}

// --- Mock OrderListStore ---

type mockOrderListStore struct {
	listOrdersFn  func(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error)
	countOrdersFn func(ctx context.Context) (int64, error)
}

func (m *mockOrderListStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.ListOrdersRow{}, nil
}

func (m *mockOrderListStore) CountOrders(ctx context.Context) (int64, error) {
	if m.countOrdersFn != nil {
		return m.countOrdersFn(ctx)
	}
	return 0, nil
}

func setupOrderRouter(svc *mockOrderService, store *mockOrderListStore, pub *recordingPublisher) *chi.Mux {
	h := handler.NewOrderHandler(svc, store, pub)
	r := chi.NewRouter()
	r.Route("/admin/orders", h.RegisterRoutes)
	return r
}

// --- List tests ---

func TestOrderList_Pagination(t *testing.T) {
	var gotArg database.ListOrdersParams
	store := &mockOrderListStore{
		listOrdersFn: func(_ context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error) {
			gotArg = arg
			return []database.ListOrdersRow{{
				ID:          uuid.New(),
				OrderNumber: "ORD-7",
				Type:        database.OrderTypeDINEIN,
				Status:      database.OrderStatusPENDING,
				Total:       testNumeric("12.5"),
				CreatedAt:   time.Now(),
			}}, nil
		},
		countOrdersFn: func(context.Context) (int64, error) { return 21, nil },
	}
	r := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	rr := doRequest(t, r, "GET", "/admin/orders?page=3&limit=10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if gotArg.Limit != 10 || gotArg.Offset != 20 {
		t.Errorf("list params: got %+v, want limit 10 offset 20", gotArg)
	}

	resp := decodeResponse(t, rr)
	meta := resp["meta"].(map[string]interface{})
	if meta["total"] != float64(21) || meta["page"] != float64(3) || meta["pages"] != float64(3) {
		t.Errorf("meta: got %v", meta)
	}
	data := resp["data"].([]interface{})
	if len(data) != 1 || data[0].(map[string]interface{})["total"] != "12.50" {
		t.Errorf("data: got %v", data)
	}
}

func TestOrderList_DefaultsAndClamp(t *testing.T) {
	var gotArg database.ListOrdersParams
	store := &mockOrderListStore{
		listOrdersFn: func(_ context.Context, arg database.ListOrdersParams) ([]database.ListOrdersRow, error) {
			gotArg = arg
			return nil, nil
		},
	}
	r := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	doRequest(t, r, "GET", "/admin/orders?page=abc&limit=100000", "")
	if gotArg.Limit != 100 || gotArg.Offset != 0 {
		t.Errorf("list params: got %+v, want limit 100 offset 0", gotArg)
	}
}

func TestOrderList_CountError(t *testing.T) {
	store := &mockOrderListStore{
		countOrdersFn: func(context.Context) (int64, error) { return 0, errors.New("boom") },
	}
	r := setupOrderRouter(&mockOrderService{}, store, &recordingPublisher{})

	rr := doRequest(t, r, "GET", "/admin/orders", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

// --- Detail tests ---

func TestOrderGet_WithItems(t *testing.T) {
	orderID := uuid.New()
	tableID := uuid.New()
	menuItemID := uuid.New()
	svc := &mockOrderService{
		detailFn: func(_ context.Context, id uuid.UUID) (*service.OrderDetail, error) {
			return &service.OrderDetail{
				Order: database.Order{
					ID:          id,
					OrderNumber: "ORD-1",
					TableID:     pgtype.UUID{Bytes: tableID, Valid: true},
					Type:        database.OrderTypeDINEIN,
					Status:      database.OrderStatusACCEPTED,
					Subtotal:    testNumeric("23.50"),
					Total:       testNumeric("23.50"),
					CreatedAt:   time.Now(),
				},
				Items: []database.OrderItem{
					{
						ID:           uuid.New(),
						MenuItemID:   pgtype.UUID{Bytes: menuItemID, Valid: true},
						LineNumber:   1,
						Quantity:     2,
						Price:        testNumeric("10"),
						Subtotal:     testNumeric("20"),
						Notes:        pgtype.Text{String: "no onions", Valid: true},
						ItemSnapshot: []byte(`{"name":"Burger"}`),
					},
					{
						ID:           uuid.New(),
						LineNumber:   2,
						Quantity:     1,
						Price:        testNumeric("3.5"),
						Subtotal:     testNumeric("3.5"),
						ItemSnapshot: []byte(`{"name":"Fries"}`),
					},
				},
			}, nil
		},
	}
	r := setupOrderRouter(svc, &mockOrderListStore{}, &recordingPublisher{})

	rr := doRequest(t, r, "GET", "/admin/orders/"+orderID.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["orderNumber"] != "ORD-1" || resp["tableId"] != tableID.String() || resp["total"] != "23.50" {
		t.Errorf("order: got %v", resp)
	}

	items := resp["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("items: got %d, want 2", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["quantity"] != float64(2) || first["price"] != "10.00" || first["subtotal"] != "20.00" {
		t.Errorf("first item: got %v", first)
	}
	if snap := first["itemSnapshot"].(map[string]interface{}); snap["name"] != "Burger" {
		t.Errorf("snapshot: got %v", snap)
	}
	if first["notes"] != "no onions" {
		t.Errorf("notes: got %v, want no onions", first["notes"])
	}
	second := items[1].(map[string]interface{})
	if second["menuItemId"] != nil {
		t.Errorf("deleted menu item should read as null, got %v", second["menuItemId"])
	}
	if second["notes"] != nil {
		t.Errorf("notes: got %v, want null", second["notes"])
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{}, &recordingPublisher{})

	rr := doRequest(t, r, "GET", "/admin/orders/"+uuid.New().String(), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- UpdateStatus tests ---

func TestOrderUpdateStatus_Valid(t *testing.T) {
	orderID := uuid.New()
	branchID := uuid.New()
	var gotNext database.OrderStatus
	svc := &mockOrderService{
		updateStatusFn: func(_ context.Context, id uuid.UUID, next database.OrderStatus) (*service.StatusUpdate, error) {
			gotNext = next
			return &service.StatusUpdate{ID: id, BranchID: branchID, Status: next, UpdatedAt: time.Now()}, nil
		},
	}
	pub := &recordingPublisher{}
	r := setupOrderRouter(svc, &mockOrderListStore{}, pub)

	rr := doRequest(t, r, "PATCH", "/admin/orders/"+orderID.String()+"/status", `{"status":"ACCEPTED"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if gotNext != database.OrderStatusACCEPTED {
		t.Errorf("next: got %s", gotNext)
	}
	resp := decodeResponse(t, rr)
	if resp["id"] != orderID.String() || resp["status"] != "ACCEPTED" {
		t.Errorf("response: got %v", resp)
	}
	if _, ok := resp["updatedAt"]; !ok {
		t.Error("expected updatedAt")
	}

	if pub.count() != 1 || pub.events[0].eventType != ws.EventOrderStatusUpdated || pub.events[0].branchID != branchID {
		t.Errorf("events: got %+v", pub.events)
	}
}

func TestOrderUpdateStatus_BadInput(t *testing.T) {
	svc := &mockOrderService{
		updateStatusFn: func(context.Context, uuid.UUID, database.OrderStatus) (*service.StatusUpdate, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}
	r := setupOrderRouter(svc, &mockOrderListStore{}, &recordingPublisher{})
	path := "/admin/orders/" + uuid.New().String() + "/status"

	for _, body := range []string{`{}`, `{"status":"  "}`, `{"status":"SERVED"}`, `not json`} {
		rr := doRequest(t, r, "PATCH", path, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", body, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestOrderUpdateStatus_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"illegal transition", fmt.Errorf("%w: PENDING -> READY", service.ErrInvalidTransition), http.StatusConflict},
		{"lost race", fmt.Errorf("%w: order status changed, please retry", service.ErrInvalidTransition), http.StatusConflict},
		{"unknown order", service.ErrOrderNotFound, http.StatusNotFound},
		{"storage", errors.New("tx closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				updateStatusFn: func(context.Context, uuid.UUID, database.OrderStatus) (*service.StatusUpdate, error) {
					return nil, tt.err
				},
			}
			pub := &recordingPublisher{}
			r := setupOrderRouter(svc, &mockOrderListStore{}, pub)

			rr := doRequest(t, r, "PATCH", "/admin/orders/"+uuid.New().String()+"/status", `{"status":"READY"}`)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if pub.count() != 0 {
				t.Error("no event should be published for a failed update")
			}
		})
	}
}

func TestOrderUpdateStatus_InvalidOrderID(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{}, &mockOrderListStore{}, &recordingPublisher{})

	rr := doRequest(t, r, "PATCH", "/admin/orders/nope/status", `{"status":"ACCEPTED"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
