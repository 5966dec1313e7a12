package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    order_number, table_id, branch_id, type, status, customer_name,
    customer_phone, subtotal, tax, discount, total
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
)
RETURNING id, order_number, table_id, branch_id, type, status, customer_name,
    customer_phone, subtotal, tax, discount, total, created_at, updated_at
`

type CreateOrderParams struct {
	OrderNumber   string         `json:"order_number"`
	TableID       pgtype.UUID    `json:"table_id"`
	BranchID      uuid.UUID      `json:"branch_id"`
	Type          OrderType      `json:"type"`
	Status        OrderStatus    `json:"status"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone pgtype.Text    `json:"customer_phone"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	Tax           pgtype.Numeric `json:"tax"`
	Discount      pgtype.Numeric `json:"discount"`
	Total         pgtype.Numeric `json:"total"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.TableID,
		arg.BranchID,
		arg.Type,
		arg.Status,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.Subtotal,
		arg.Tax,
		arg.Discount,
		arg.Total,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.TableID,
		&i.BranchID,
		&i.Type,
		&i.Status,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Subtotal,
		&i.Tax,
		&i.Discount,
		&i.Total,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (
    order_id, menu_item_id, line_number, quantity, price, subtotal, notes, item_snapshot
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)
RETURNING id, order_id, menu_item_id, line_number, quantity, price, subtotal,
    notes, item_snapshot, created_at
`

type CreateOrderItemParams struct {
	OrderID      uuid.UUID      `json:"order_id"`
	MenuItemID   pgtype.UUID    `json:"menu_item_id"`
	LineNumber   int32          `json:"line_number"`
	Quantity     int32          `json:"quantity"`
	Price        pgtype.Numeric `json:"price"`
	Subtotal     pgtype.Numeric `json:"subtotal"`
	Notes        pgtype.Text    `json:"notes"`
	ItemSnapshot []byte         `json:"item_snapshot"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.LineNumber,
		arg.Quantity,
		arg.Price,
		arg.Subtotal,
		arg.Notes,
		arg.ItemSnapshot,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.LineNumber,
		&i.Quantity,
		&i.Price,
		&i.Subtotal,
		&i.Notes,
		&i.ItemSnapshot,
		&i.CreatedAt,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, order_number, table_id, branch_id, type, status, customer_name,
    customer_phone, subtotal, tax, discount, total, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.TableID,
		&i.BranchID,
		&i.Type,
		&i.Status,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Subtotal,
		&i.Tax,
		&i.Discount,
		&i.Total,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, menu_item_id, line_number, quantity, price, subtotal,
    notes, item_snapshot, created_at
FROM order_items
WHERE order_id = $1
ORDER BY line_number
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.LineNumber,
			&i.Quantity,
			&i.Price,
			&i.Subtotal,
			&i.Notes,
			&i.ItemSnapshot,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING id, status, updated_at
`

type UpdateOrderStatusParams struct {
	ID       uuid.UUID   `json:"id"`
	Status   OrderStatus `json:"status"`
	Status_2 OrderStatus `json:"status_2"`
}

type UpdateOrderStatusRow struct {
	ID        uuid.UUID   `json:"id"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UpdateOrderStatus only matches while the row still holds Status_2, so two
// concurrent writers cannot both advance the same order.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (UpdateOrderStatusRow, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.Status_2)
	var i UpdateOrderStatusRow
	err := row.Scan(&i.ID, &i.Status, &i.UpdatedAt)
	return i, err
}

const listOrders = `-- name: ListOrders :many
SELECT id, order_number, type, status, customer_name, total, created_at
FROM orders
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2
`

type ListOrdersParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ListOrdersRow struct {
	ID           uuid.UUID      `json:"id"`
	OrderNumber  string         `json:"order_number"`
	Type         OrderType      `json:"type"`
	Status       OrderStatus    `json:"status"`
	CustomerName string         `json:"customer_name"`
	Total        pgtype.Numeric `json:"total"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]ListOrdersRow, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrdersRow{}
	for rows.Next() {
		var i ListOrdersRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderNumber,
			&i.Type,
			&i.Status,
			&i.CustomerName,
			&i.Total,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countOrders = `-- name: CountOrders :one
SELECT count(*) FROM orders
`

func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders)
	var count int64
	err := row.Scan(&count)
	return count, err
}
