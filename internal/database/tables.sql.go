package database

import (
	"context"

	"github.com/google/uuid"
)

const getTable = `-- name: GetTable :one
SELECT id, branch_id, number, seats, qr_code, created_at
FROM tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, getTable, id)
	var i Table
	err := row.Scan(
		&i.ID,
		&i.BranchID,
		&i.Number,
		&i.Seats,
		&i.QrCode,
		&i.CreatedAt,
	)
	return i, err
}
