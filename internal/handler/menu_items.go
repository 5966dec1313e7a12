package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	maxAdminMenuPageSize   = 100
	maxPublicMenuPageSize  = 50
	defaultPreparationTime = 10
)

// MenuStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItems(ctx context.Context, arg database.ListMenuItemsParams) ([]database.ListMenuItemsRow, error)
	CountMenuItems(ctx context.Context) (int64, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// MenuHandler serves the menu for both the dashboard and the customer web app.
type MenuHandler struct {
	store MenuStore
	sizer service.ModelSizer
}

// NewMenuHandler creates a new MenuHandler. sizer may be nil to skip the
// model size check.
func NewMenuHandler(store MenuStore, sizer service.ModelSizer) *MenuHandler {
	return &MenuHandler{store: store, sizer: sizer}
}

// RegisterRoutes registers admin menu endpoints. Expected to be mounted at /admin/menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// RegisterPublicRoutes registers the customer menu endpoints. Expected to be
// mounted at /public/menu.
func (h *MenuHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/", h.PublicList)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/ar", h.GetAR)
	r.Get("/{id}/ar/readiness", h.GetARReadiness)
}

// --- Request / Response types ---

type createMenuItemRequest struct {
	CategoryID        string          `json:"categoryId"`
	Name              string          `json:"name"`
	NameAr            string          `json:"nameAr"`
	Description       *string         `json:"description"`
	DescriptionAr     *string         `json:"descriptionAr"`
	Price             decimal.Decimal `json:"price"`
	PreparationTime   *int32          `json:"preparationTime"`
	Calories          *int32          `json:"calories"`
	IsAvailable       *bool           `json:"isAvailable"`
	HasArModel        *bool           `json:"hasArModel"`
	ArModelUrl        *string         `json:"arModelUrl"`
	ArModelUrlIos     *string         `json:"arModelUrlIos"`
	ArModelUrlAndroid *string         `json:"arModelUrlAndroid"`
	ArThumbnail       *string         `json:"arThumbnail"`
}

// updateMenuItemRequest overlays the stored item. Omitted fields are kept.
type updateMenuItemRequest struct {
	CategoryID        *string          `json:"categoryId"`
	Name              *string          `json:"name"`
	NameAr            *string          `json:"nameAr"`
	Description       *string          `json:"description"`
	DescriptionAr     *string          `json:"descriptionAr"`
	Price             *decimal.Decimal `json:"price"`
	PreparationTime   *int32           `json:"preparationTime"`
	Calories          *int32           `json:"calories"`
	IsAvailable       *bool            `json:"isAvailable"`
	HasArModel        *bool            `json:"hasArModel"`
	ArModelUrl        *string          `json:"arModelUrl"`
	ArModelUrlIos     *string          `json:"arModelUrlIos"`
	ArModelUrlAndroid *string          `json:"arModelUrlAndroid"`
	ArThumbnail       *string          `json:"arThumbnail"`
}

type menuItemResponse struct {
	ID                uuid.UUID `json:"id"`
	CategoryID        uuid.UUID `json:"categoryId"`
	Name              string    `json:"name"`
	NameAr            string    `json:"nameAr"`
	Description       *string   `json:"description"`
	DescriptionAr     *string   `json:"descriptionAr"`
	Price             string    `json:"price"`
	PreparationTime   int32     `json:"preparationTime"`
	Calories          *int32    `json:"calories"`
	IsAvailable       bool      `json:"isAvailable"`
	HasArModel        bool      `json:"hasArModel"`
	ArModelUrl        *string   `json:"arModelUrl"`
	ArModelUrlIos     *string   `json:"arModelUrlIos"`
	ArModelUrlAndroid *string   `json:"arModelUrlAndroid"`
	ArThumbnail       *string   `json:"arThumbnail"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type menuCategoryRef struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	NameAr string    `json:"nameAr"`
}

type menuListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	NameAr          string          `json:"nameAr"`
	Description     *string         `json:"description"`
	DescriptionAr   *string         `json:"descriptionAr"`
	Price           string          `json:"price"`
	PreparationTime int32           `json:"preparationTime"`
	IsAvailable     bool            `json:"isAvailable"`
	HasArModel      bool            `json:"hasArModel"`
	ArThumbnail     *string         `json:"arThumbnail"`
	Category        menuCategoryRef `json:"category"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type arInfoResponse struct {
	HasArModel        bool    `json:"hasArModel"`
	ArModelUrl        *string `json:"arModelUrl"`
	ArModelUrlIos     *string `json:"arModelUrlIos"`
	ArModelUrlAndroid *string `json:"arModelUrlAndroid"`
	ArThumbnail       *string `json:"arThumbnail"`
}

type arReadinessResponse struct {
	IsReady          bool     `json:"isReady"`
	SupportedFormats []string `json:"supportedFormats"`
	Reason           string   `json:"reason,omitempty"`
	ModelURL         string   `json:"modelUrl,omitempty"`
	ThumbnailURL     string   `json:"thumbnailUrl,omitempty"`
}

// --- Handlers ---

// List handles GET /admin/menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, maxAdminMenuPageSize)
}

// PublicList handles GET /public/menu. The page count never drops below one
// so an empty menu still renders a single page.
func (h *MenuHandler) PublicList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, maxPublicMenuPageSize)
}

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request, maxLimit int) {
	page, limit := parsePage(r, maxLimit)

	var (
		rows  []database.ListMenuItemsRow
		total int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		rows, err = h.store.ListMenuItems(ctx, database.ListMenuItemsParams{
			Limit:  int32(limit),
			Offset: int32((page - 1) * limit),
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.store.CountMenuItems(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternal(w, "list menu items", err)
		return
	}

	data := make([]menuListItemResponse, len(rows))
	for i, m := range rows {
		data[i] = menuListItemResponse{
			ID:              m.ID,
			Name:            m.Name,
			NameAr:          m.NameAr,
			Description:     textPtr(m.Description),
			DescriptionAr:   textPtr(m.DescriptionAr),
			Price:           numericToString(m.Price),
			PreparationTime: m.PreparationTime,
			IsAvailable:     m.IsAvailable,
			HasArModel:      m.HasArModel,
			ArThumbnail:     textPtr(m.ArThumbnail),
			Category: menuCategoryRef{
				ID:     m.CategoryID,
				Name:   m.CategoryName,
				NameAr: m.CategoryNameAr,
			},
			CreatedAt: m.CreatedAt,
		}
	}

	meta := newPageMeta(total, page, limit)
	if meta.Pages < 1 {
		meta.Pages = 1
	}
	writeJSON(w, http.StatusOK, pageResponse{Data: data, Meta: meta})
}

// Get handles GET /admin/menu/{id} and GET /public/menu/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// GetAR handles GET /public/menu/{id}/ar.
func (h *MenuHandler) GetAR(w http.ResponseWriter, r *http.Request) {
	item, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, arInfoResponse{
		HasArModel:        item.HasArModel,
		ArModelUrl:        textPtr(item.ArModelUrl),
		ArModelUrlIos:     textPtr(item.ArModelUrlIos),
		ArModelUrlAndroid: textPtr(item.ArModelUrlAndroid),
		ArThumbnail:       textPtr(item.ArThumbnail),
	})
}

// GetARReadiness handles GET /public/menu/{id}/ar/readiness. An unknown item
// reads as having no model rather than 404 so the viewer can hide its button.
func (h *MenuHandler) GetARReadiness(w http.ResponseWriter, r *http.Request) {
	var model service.ARModel
	if id, err := uuid.Parse(chi.URLParam(r, "id")); err == nil {
		item, err := h.store.GetMenuItem(r.Context(), id)
		switch {
		case err == nil:
			model = arModelOf(item)
		case !errors.Is(err, pgx.ErrNoRows):
			writeInternal(w, "get menu item", err)
			return
		}
	}

	res := service.CheckARReadiness(r.Context(), model, r.UserAgent(), h.sizer)
	writeJSON(w, http.StatusOK, arReadinessResponse{
		IsReady:          res.IsReady,
		SupportedFormats: res.SupportedFormats,
		Reason:           res.Reason,
		ModelURL:         res.ModelURL,
		ThumbnailURL:     res.ThumbnailURL,
	})
}

// Create handles POST /admin/menu.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.NameAr = strings.TrimSpace(req.NameAr)
	if req.Name == "" || req.NameAr == "" {
		writeError(w, http.StatusBadRequest, "name and nameAr are required")
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid categoryId")
		return
	}
	if !req.Price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be greater than 0")
		return
	}
	prepTime := int32(defaultPreparationTime)
	if req.PreparationTime != nil {
		if *req.PreparationTime < 1 {
			writeError(w, http.StatusBadRequest, "preparationTime must be at least 1")
			return
		}
		prepTime = *req.PreparationTime
	}

	ar, err := service.ResolveARModel(service.ARModel{}, service.ARInput{
		HasArModel:        req.HasArModel,
		ArModelUrl:        req.ArModelUrl,
		ArModelUrlIos:     req.ArModelUrlIos,
		ArModelUrlAndroid: req.ArModelUrlAndroid,
		ArThumbnail:       req.ArThumbnail,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		CategoryID:        categoryID,
		Name:              req.Name,
		NameAr:            req.NameAr,
		Description:       optionalText(req.Description),
		DescriptionAr:     optionalText(req.DescriptionAr),
		Price:             decimalToNumeric(req.Price),
		PreparationTime:   prepTime,
		Calories:          optionalInt4(req.Calories),
		IsAvailable:       isAvailable,
		HasArModel:        ar.HasArModel,
		ArModelUrl:        ar.ArModelUrl,
		ArModelUrlIos:     ar.ArModelUrlIos,
		ArModelUrlAndroid: ar.ArModelUrlAndroid,
		ArThumbnail:       ar.ArThumbnail,
	})
	if err != nil {
		writeMenuWriteError(w, "create menu item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /admin/menu/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.load(w, r)
	if !ok {
		return
	}

	var req updateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	arg := database.UpdateMenuItemParams{
		ID:              current.ID,
		CategoryID:      current.CategoryID,
		Name:            current.Name,
		NameAr:          current.NameAr,
		Description:     current.Description,
		DescriptionAr:   current.DescriptionAr,
		Price:           current.Price,
		PreparationTime: current.PreparationTime,
		Calories:        current.Calories,
		IsAvailable:     current.IsAvailable,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		arg.CategoryID = categoryID
	}
	if req.Name != nil {
		if arg.Name = strings.TrimSpace(*req.Name); arg.Name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
	}
	if req.NameAr != nil {
		if arg.NameAr = strings.TrimSpace(*req.NameAr); arg.NameAr == "" {
			writeError(w, http.StatusBadRequest, "nameAr must not be empty")
			return
		}
	}
	if req.Description != nil {
		arg.Description = optionalText(req.Description)
	}
	if req.DescriptionAr != nil {
		arg.DescriptionAr = optionalText(req.DescriptionAr)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			writeError(w, http.StatusBadRequest, "price must be greater than 0")
			return
		}
		arg.Price = decimalToNumeric(*req.Price)
	}
	if req.PreparationTime != nil {
		if *req.PreparationTime < 1 {
			writeError(w, http.StatusBadRequest, "preparationTime must be at least 1")
			return
		}
		arg.PreparationTime = *req.PreparationTime
	}
	if req.Calories != nil {
		arg.Calories = optionalInt4(req.Calories)
	}
	if req.IsAvailable != nil {
		arg.IsAvailable = *req.IsAvailable
	}

	ar, err := service.ResolveARModel(arModelOf(current), service.ARInput{
		HasArModel:        req.HasArModel,
		ArModelUrl:        req.ArModelUrl,
		ArModelUrlIos:     req.ArModelUrlIos,
		ArModelUrlAndroid: req.ArModelUrlAndroid,
		ArThumbnail:       req.ArThumbnail,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	arg.HasArModel = ar.HasArModel
	arg.ArModelUrl = ar.ArModelUrl
	arg.ArModelUrlIos = ar.ArModelUrlIos
	arg.ArModelUrlAndroid = ar.ArModelUrlAndroid
	arg.ArThumbnail = ar.ArThumbnail

	item, err := h.store.UpdateMenuItem(r.Context(), arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeMenuWriteError(w, "update menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /admin/menu/{id}. Past orders keep their snapshots;
// their menu item reference is cleared by the foreign key.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternal(w, "delete menu item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// load fetches the menu item named by the {id} URL param, writing a 404 or
// 500 itself when it cannot.
func (h *MenuHandler) load(w http.ResponseWriter, r *http.Request) (database.MenuItem, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return database.MenuItem{}, false
	}
	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return database.MenuItem{}, false
		}
		writeInternal(w, "get menu item", err)
		return database.MenuItem{}, false
	}
	return item, true
}

func writeMenuWriteError(w http.ResponseWriter, op string, err error) {
	switch {
	case isForeignKeyViolation(err):
		writeError(w, http.StatusBadRequest, "category not found")
	case isCheckViolation(err):
		writeError(w, http.StatusBadRequest, "menu item violates a constraint")
	default:
		writeInternal(w, op, err)
	}
}

func arModelOf(m database.MenuItem) service.ARModel {
	return service.ARModel{
		HasArModel:        m.HasArModel,
		ArModelUrl:        m.ArModelUrl,
		ArModelUrlIos:     m.ArModelUrlIos,
		ArModelUrlAndroid: m.ArModelUrlAndroid,
		ArThumbnail:       m.ArThumbnail,
	}
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:                m.ID,
		CategoryID:        m.CategoryID,
		Name:              m.Name,
		NameAr:            m.NameAr,
		Description:       textPtr(m.Description),
		DescriptionAr:     textPtr(m.DescriptionAr),
		Price:             numericToString(m.Price),
		PreparationTime:   m.PreparationTime,
		IsAvailable:       m.IsAvailable,
		HasArModel:        m.HasArModel,
		ArModelUrl:        textPtr(m.ArModelUrl),
		ArModelUrlIos:     textPtr(m.ArModelUrlIos),
		ArModelUrlAndroid: textPtr(m.ArModelUrlAndroid),
		ArThumbnail:       textPtr(m.ArThumbnail),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Calories.Valid {
		c := m.Calories.Int32
		resp.Calories = &c
	}
	return resp
}

func optionalInt4(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}
