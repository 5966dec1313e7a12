package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPENDING    OrderStatus = "PENDING"
	OrderStatusACCEPTED   OrderStatus = "ACCEPTED"
	OrderStatusCONFIRMED  OrderStatus = "CONFIRMED"
	OrderStatusPREPARING  OrderStatus = "PREPARING"
	OrderStatusREADY      OrderStatus = "READY"
	OrderStatusINDELIVERY OrderStatus = "IN_DELIVERY"
	OrderStatusCOMPLETED  OrderStatus = "COMPLETED"
	OrderStatusCANCELLED  OrderStatus = "CANCELLED"
	OrderStatusNOSHOW     OrderStatus = "NO_SHOW"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

func (e OrderStatus) Valid() bool {
	switch e {
	case OrderStatusPENDING,
		OrderStatusACCEPTED,
		OrderStatusCONFIRMED,
		OrderStatusPREPARING,
		OrderStatusREADY,
		OrderStatusINDELIVERY,
		OrderStatusCOMPLETED,
		OrderStatusCANCELLED,
		OrderStatusNOSHOW:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypeDINEIN   OrderType = "DINE_IN"
	OrderTypeTAKEAWAY OrderType = "TAKEAWAY"
	OrderTypeDELIVERY OrderType = "DELIVERY"
)

func (e *OrderType) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderType(s)
	case string:
		*e = OrderType(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderType: %T", src)
	}
	return nil
}

func (e OrderType) Valid() bool {
	switch e {
	case OrderTypeDINEIN,
		OrderTypeTAKEAWAY,
		OrderTypeDELIVERY:
		return true
	}
	return false
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NameAr    string    `json:"name_ar"`
	SortOrder int32     `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type MenuItem struct {
	ID                uuid.UUID      `json:"id"`
	CategoryID        uuid.UUID      `json:"category_id"`
	Name              string         `json:"name"`
	NameAr            string         `json:"name_ar"`
	Description       pgtype.Text    `json:"description"`
	DescriptionAr     pgtype.Text    `json:"description_ar"`
	Price             pgtype.Numeric `json:"price"`
	PreparationTime   int32          `json:"preparation_time"`
	Calories          pgtype.Int4    `json:"calories"`
	IsAvailable       bool           `json:"is_available"`
	HasArModel        bool           `json:"has_ar_model"`
	ArModelUrl        pgtype.Text    `json:"ar_model_url"`
	ArModelUrlIos     pgtype.Text    `json:"ar_model_url_ios"`
	ArModelUrlAndroid pgtype.Text    `json:"ar_model_url_android"`
	ArThumbnail       pgtype.Text    `json:"ar_thumbnail"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

type Order struct {
	ID            uuid.UUID      `json:"id"`
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
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID           uuid.UUID      `json:"id"`
	OrderID      uuid.UUID      `json:"order_id"`
	MenuItemID   pgtype.UUID    `json:"menu_item_id"`
	LineNumber   int32          `json:"line_number"`
	Quantity     int32          `json:"quantity"`
	Price        pgtype.Numeric `json:"price"`
	Subtotal     pgtype.Numeric `json:"subtotal"`
	Notes        pgtype.Text    `json:"notes"`
	ItemSnapshot []byte         `json:"item_snapshot"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Table struct {
	ID        uuid.UUID   `json:"id"`
	BranchID  uuid.UUID   `json:"branch_id"`
	Number    string      `json:"number"`
	Seats     int32       `json:"seats"`
	QrCode    pgtype.Text `json:"qr_code"`
	CreatedAt time.Time   `json:"created_at"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
