package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/enum"
	"github.com/tablesidear/api/internal/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	maxUserPageSize   = 100
	minPasswordLength = 8
)

// UserStore defines the database methods needed by user handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context, arg database.ListUsersParams) ([]database.ListUsersRow, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.CreateUserRow, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.UpdateUserRow, error)
	SoftDeleteUser(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// UserHandler handles dashboard account endpoints.
type UserHandler struct {
	store      UserStore
	bcryptCost int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store, bcryptCost: bcrypt.DefaultCost}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted at /admin/users.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type userDetailResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Handlers ---

// List handles GET /admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePage(r, maxUserPageSize)

	var (
		rows  []database.ListUsersRow
		total int64
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		rows, err = h.store.ListUsers(ctx, database.ListUsersParams{
			Limit:  int32(limit),
			Offset: int32((page - 1) * limit),
		})
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.store.CountUsers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeInternal(w, "list users", err)
		return
	}

	data := make([]userDetailResponse, len(rows))
	for i, u := range rows {
		data[i] = userDetailResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, pageResponse{Data: data, Meta: newPageMeta(total, page, limit)})
}

// Create handles POST /admin/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "email, password, name, and role are required")
		return
	}
	if msg := validateUserFields(req.Email, req.Role); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		log.Printf("ERROR: create user: hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Email:          req.Email,
		HashedPassword: string(hashed),
		Name:           req.Name,
		Role:           req.Role,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		writeInternal(w, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, userDetailResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}

// Update handles PUT /admin/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "email, name, and role are required")
		return
	}
	if msg := validateUserFields(req.Email, req.Role); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:    userID,
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		writeInternal(w, "update user", err)
		return
	}

	writeJSON(w, http.StatusOK, userDetailResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	})
}

// Delete handles DELETE /admin/users/{id}. Accounts are deactivated, never
// removed, and nobody may deactivate themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == userID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if _, err := h.store.SoftDeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeInternal(w, "delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateUserFields(email, role string) string {
	if !strings.Contains(email, "@") {
		return "invalid email format"
	}
	if !enum.IsValidUserRole(role) {
		return "invalid role"
	}
	return ""
}
