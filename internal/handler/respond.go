package handler

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tablesidear/api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeInternal(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeServiceError maps order service errors onto status codes. Anything
// unrecognised is logged and reported without detail.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case isBadInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case isConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeInternal(w, op, err)
	}
}

func isBadInput(err error) bool {
	return errors.Is(err, service.ErrTableRequired) ||
		errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrMenuItemRequired) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrQuantityTooLarge) ||
		errors.Is(err, service.ErrAmountTooLarge) ||
		errors.Is(err, service.ErrARModelMissingURL) ||
		errors.Is(err, service.ErrARModelURLsNotEmpty)
}

func isNotFound(err error) bool {
	return errors.Is(err, service.ErrTableNotFound) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrOrderNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, service.ErrMenuItemUnavailable) ||
		errors.Is(err, service.ErrInvalidTransition)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// --- Pagination ---

const defaultPageSize = 10

type pageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type pageResponse struct {
	Data interface{} `json:"data"`
	Meta pageMeta    `json:"meta"`
}

// parsePage reads page and limit query params. Missing or malformed values
// fall back to page 1 and the default size; limit is clamped to 1..maxLimit.
func parsePage(r *http.Request, maxLimit int) (page, limit int) {
	page, limit = 1, defaultPageSize
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			limit = v
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	// keep the offset inside int32
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

func newPageMeta(total int64, page, limit int) pageMeta {
	return pageMeta{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

// --- Conversions ---

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func optionalText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}
