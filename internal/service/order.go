package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tablesidear/api/internal/database"
)

const maxOrderNumberRetries = 3

// maxAmount is the largest value a NUMERIC(12,2) money column holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// Errors returned by the order service, grouped by how callers should report them.
var (
	// Bad input
	ErrTableRequired    = errors.New("tableId is required")
	ErrEmptyItems       = errors.New("items cannot be empty")
	ErrMenuItemRequired = errors.New("menuItemId is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than 0")
	ErrQuantityTooLarge = errors.New("quantity is too large")
	ErrAmountTooLarge   = errors.New("order amount is too large")

	// Not found
	ErrTableNotFound    = errors.New("table not found")
	ErrMenuItemNotFound = errors.New("menu item(s) not found")
	ErrOrderNotFound    = errors.New("order not found")

	// Conflict
	ErrMenuItemUnavailable = errors.New("menu item not available")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// MissingMenuItemsError lists every requested menu item id that did not resolve.
type MissingMenuItemsError struct {
	IDs []string
}

func (e *MissingMenuItemsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMenuItemNotFound, strings.Join(e.IDs, ", "))
}

func (e *MissingMenuItemsError) Unwrap() error { return ErrMenuItemNotFound }

// UnavailableItemError names the first unavailable menu item of an order.
type UnavailableItemError struct {
	MenuItemID uuid.UUID
	Name       string
}

func (e *UnavailableItemError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMenuItemUnavailable, e.Name)
}

func (e *UnavailableItemError) Unwrap() error { return ErrMenuItemUnavailable }

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (database.Table, error)
	ListMenuItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.ListMenuItemsByIDsRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.UpdateOrderStatusRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the table-ordering input.
type CreateOrderRequest struct {
	TableID string
	Items   []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single requested line.
type CreateOrderItemRequest struct {
	MenuItemID string
	Quantity   int
	Notes      *string
}

// CreateOrderResult is the full created order with its items.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// StatusUpdate is the outcome of a successful transition.
type StatusUpdate struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Status    database.OrderStatus
	UpdatedAt time.Time
}

// OrderDetail is an order with its items in line order.
type OrderDetail struct {
	Order database.Order
	Items []database.OrderItem
}

// ItemSnapshot is the catalog text captured onto an order item.
type ItemSnapshot struct {
	Name   string `json:"name"`
	NameAr string `json:"nameAr,omitempty"`
}

// OrderService handles order business logic.
type OrderService struct {
	store    OrderStore
	pool     TxBeginner
	newStore NewOrderStore
	numbers  OrderNumberGenerator
}

// NewOrderService creates a new OrderService. store serves reads outside a
// transaction; writes go through stores built by newStore on a pool tx.
func NewOrderService(store OrderStore, pool TxBeginner, newStore NewOrderStore, numbers OrderNumberGenerator) *OrderService {
	return &OrderService{store: store, pool: pool, newStore: newStore, numbers: numbers}
}

// requestedLine is a deduplicated request entry. id is the zero UUID when
// the raw id did not parse.
type requestedLine struct {
	key      string
	id       uuid.UUID
	valid    bool
	quantity int64
	notes    []string
}

// pricedLine holds a prepared order item.
type pricedLine struct {
	menuItemID uuid.UUID
	quantity   int32
	unitPrice  decimal.Decimal
	subtotal   decimal.Decimal
	notes      string
	snapshot   ItemSnapshot
}

// CreateOrder validates, prices, and creates a dine-in order atomically.
// Retries up to maxOrderNumberRetries times on order_number unique constraint
// violations.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	// --- Validate input ---
	if strings.TrimSpace(req.TableID) == "" {
		return nil, ErrTableRequired
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.MenuItemID) == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemRequired)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	lines, err := dedupeItems(req.Items)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req.TableID, lines)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// dedupeItems merges entries for the same menu item, keeping the position of
// its first appearance. Distinct notes of merged entries are kept in request
// order and later joined with "; ".
func dedupeItems(items []CreateOrderItemRequest) ([]requestedLine, error) {
	index := make(map[string]int, len(items))
	var lines []requestedLine
	for _, item := range items {
		raw := strings.TrimSpace(item.MenuItemID)
		line := requestedLine{key: raw}
		if id, err := uuid.Parse(raw); err == nil {
			line.id = id
			line.valid = true
			line.key = id.String()
		}

		if i, ok := index[line.key]; ok {
			lines[i].quantity += int64(item.Quantity)
		} else {
			line.quantity = int64(item.Quantity)
			index[line.key] = len(lines)
			lines = append(lines, line)
		}
		if item.Notes != nil {
			i := index[line.key]
			if note := strings.TrimSpace(*item.Notes); note != "" && !containsString(lines[i].notes, note) {
				lines[i].notes = append(lines[i].notes, note)
			}
		}
		if lines[index[line.key]].quantity > math.MaxInt32 {
			return nil, ErrQuantityTooLarge
		}
	}
	return lines, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, tableID string, lines []requestedLine) (*CreateOrderResult, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Resolve menu items in one batch ---
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if l.valid {
			ids = append(ids, l.id)
		}
	}
	found := map[uuid.UUID]database.ListMenuItemsByIDsRow{}
	if len(ids) > 0 {
		rows, err := store.ListMenuItemsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list menu items: %w", err)
		}
		for _, row := range rows {
			found[row.ID] = row
		}
	}

	var missing []string
	for _, l := range lines {
		if _, ok := found[l.id]; !l.valid || !ok {
			missing = append(missing, l.key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingMenuItemsError{IDs: missing}
	}

	for _, l := range lines {
		mi := found[l.id]
		if !mi.IsAvailable {
			name := mi.NameAr
			if name == "" {
				name = mi.Name
			}
			return nil, &UnavailableItemError{MenuItemID: mi.ID, Name: name}
		}
	}

	// --- Price lines: round each line, then sum ---
	subtotal := decimal.Zero
	priced := make([]pricedLine, len(lines))
	for i, l := range lines {
		mi := found[l.id]
		unitPrice := numericToDecimal(mi.Price)
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt(l.quantity)).Round(2)
		priced[i] = pricedLine{
			menuItemID: mi.ID,
			quantity:   int32(l.quantity),
			unitPrice:  unitPrice,
			subtotal:   lineSubtotal,
			notes:      strings.Join(l.notes, "; "),
			snapshot:   ItemSnapshot{Name: mi.Name, NameAr: mi.NameAr},
		}
		subtotal = subtotal.Add(lineSubtotal)
		if lineSubtotal.GreaterThan(maxAmount) || subtotal.GreaterThan(maxAmount) {
			return nil, ErrAmountTooLarge
		}
	}

	// --- Resolve table ---
	tid, err := uuid.Parse(strings.TrimSpace(tableID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	table, err := store.GetTable(ctx, tid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	// --- Insert order ---
	tax := decimal.Zero
	discount := decimal.Zero
	total := subtotal.Sub(discount).Add(tax)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:  s.numbers.Next(),
		TableID:      pgtype.UUID{Bytes: table.ID, Valid: true},
		BranchID:     table.BranchID,
		Type:         database.OrderTypeDINEIN,
		Status:       database.OrderStatusPENDING,
		CustomerName: "Table " + table.Number,
		Subtotal:     decimalToNumeric(subtotal),
		Tax:          decimalToNumeric(tax),
		Discount:     decimalToNumeric(discount),
		Total:        decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	items := make([]database.OrderItem, 0, len(priced))
	for i, p := range priced {
		snapshot, err := json.Marshal(p.snapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal item snapshot: %w", err)
		}
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:      order.ID,
			MenuItemID:   pgtype.UUID{Bytes: p.menuItemID, Valid: true},
			LineNumber:   int32(i + 1),
			Quantity:     p.quantity,
			Price:        decimalToNumeric(p.unitPrice),
			Subtotal:     decimalToNumeric(p.subtotal),
			Notes:        pgtype.Text{String: p.notes, Valid: p.notes != ""},
			ItemSnapshot: snapshot,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// UpdateStatus advances an order by one step of its type's state machine.
// The write is conditional on the status that was read, so a concurrent
// transition makes this call fail with ErrInvalidTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next database.OrderStatus) (*StatusUpdate, error) {
	current, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateTransition(current.Type, current.Status, next); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:       orderID,
		Status:   next,
		Status_2: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order status changed, please retry", ErrInvalidTransition)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return &StatusUpdate{
		ID:        updated.ID,
		BranchID:  current.BranchID,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	}, nil
}

// GetPublicStatus returns the order row without items.
func (s *OrderService) GetPublicStatus(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// GetOrderDetail returns the order with its items.
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.GetPublicStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// DecodeSnapshot reads an item snapshot written by CreateOrder. Malformed
// snapshots are logged and decode to the zero value.
func DecodeSnapshot(raw []byte) ItemSnapshot {
	var snap ItemSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("ERROR: decode item snapshot: %v", err)
		return ItemSnapshot{}
	}
	return snap
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
