package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, category_id, name, name_ar, description, description_ar, price,
    preparation_time, calories, is_available, has_ar_model, ar_model_url,
    ar_model_url_ios, ar_model_url_android, ar_thumbnail, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...interface{}) error }) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.NameAr,
		&i.Description,
		&i.DescriptionAr,
		&i.Price,
		&i.PreparationTime,
		&i.Calories,
		&i.IsAvailable,
		&i.HasArModel,
		&i.ArModelUrl,
		&i.ArModelUrlIos,
		&i.ArModelUrlAndroid,
		&i.ArThumbnail,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listMenuItemsByIDs = `-- name: ListMenuItemsByIDs :many
SELECT id, name, name_ar, price, is_available
FROM menu_items
WHERE id = ANY($1::uuid[])
`

type ListMenuItemsByIDsRow struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	NameAr      string         `json:"name_ar"`
	Price       pgtype.Numeric `json:"price"`
	IsAvailable bool           `json:"is_available"`
}

func (q *Queries) ListMenuItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]ListMenuItemsByIDsRow, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListMenuItemsByIDsRow{}
	for rows.Next() {
		var i ListMenuItemsByIDsRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.NameAr,
			&i.Price,
			&i.IsAvailable,
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

const getMenuItem = `-- name: GetMenuItem :one
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

const listMenuItems = `-- name: ListMenuItems :many
SELECT m.id, m.category_id, c.name, c.name_ar, m.name, m.name_ar, m.description,
    m.description_ar, m.price, m.preparation_time, m.is_available, m.has_ar_model,
    m.ar_thumbnail, m.created_at
FROM menu_items m
JOIN categories c ON c.id = m.category_id
ORDER BY m.created_at DESC, m.id
LIMIT $1 OFFSET $2
`

type ListMenuItemsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

type ListMenuItemsRow struct {
	ID              uuid.UUID      `json:"id"`
	CategoryID      uuid.UUID      `json:"category_id"`
	CategoryName    string         `json:"category_name"`
	CategoryNameAr  string         `json:"category_name_ar"`
	Name            string         `json:"name"`
	NameAr          string         `json:"name_ar"`
	Description     pgtype.Text    `json:"description"`
	DescriptionAr   pgtype.Text    `json:"description_ar"`
	Price           pgtype.Numeric `json:"price"`
	PreparationTime int32          `json:"preparation_time"`
	IsAvailable     bool           `json:"is_available"`
	HasArModel      bool           `json:"has_ar_model"`
	ArThumbnail     pgtype.Text    `json:"ar_thumbnail"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]ListMenuItemsRow, error) {
	rows, err := q.db.Query(ctx, listMenuItems, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListMenuItemsRow{}
	for rows.Next() {
		var i ListMenuItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.CategoryName,
			&i.CategoryNameAr,
			&i.Name,
			&i.NameAr,
			&i.Description,
			&i.DescriptionAr,
			&i.Price,
			&i.PreparationTime,
			&i.IsAvailable,
			&i.HasArModel,
			&i.ArThumbnail,
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

const countMenuItems = `-- name: CountMenuItems :one
SELECT count(*) FROM menu_items
`

func (q *Queries) CountMenuItems(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countMenuItems)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (
    category_id, name, name_ar, description, description_ar, price,
    preparation_time, calories, is_available, has_ar_model, ar_model_url,
    ar_model_url_ios, ar_model_url_android, ar_thumbnail
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
RETURNING ` + menuItemColumns + `
`

type CreateMenuItemParams struct {
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
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.CategoryID,
		arg.Name,
		arg.NameAr,
		arg.Description,
		arg.DescriptionAr,
		arg.Price,
		arg.PreparationTime,
		arg.Calories,
		arg.IsAvailable,
		arg.HasArModel,
		arg.ArModelUrl,
		arg.ArModelUrlIos,
		arg.ArModelUrlAndroid,
		arg.ArThumbnail,
	)
	return scanMenuItem(row)
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET category_id = $2, name = $3, name_ar = $4, description = $5,
    description_ar = $6, price = $7, preparation_time = $8, calories = $9,
    is_available = $10, has_ar_model = $11, ar_model_url = $12,
    ar_model_url_ios = $13, ar_model_url_android = $14, ar_thumbnail = $15,
    updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns + `
`

type UpdateMenuItemParams struct {
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
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.NameAr,
		arg.Description,
		arg.DescriptionAr,
		arg.Price,
		arg.PreparationTime,
		arg.Calories,
		arg.IsAvailable,
		arg.HasArModel,
		arg.ArModelUrl,
		arg.ArModelUrlIos,
		arg.ArModelUrlAndroid,
		arg.ArThumbnail,
	)
	return scanMenuItem(row)
}

const deleteMenuItem = `-- name: DeleteMenuItem :one
DELETE FROM menu_items
WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, id)
	var deleted uuid.UUID
	err := row.Scan(&deleted)
	return deleted, err
}
