package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tablesidear/api/internal/auth"
	"github.com/tablesidear/api/internal/database"
	"github.com/tablesidear/api/internal/handler"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- Mock store ---

type mockAuthStore struct {
	userByEmail map[string]database.User
	err         error
}

func newMockStore() *mockAuthStore {
	return &mockAuthStore{userByEmail: make(map[string]database.User)}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByEmail[u.Email] = u
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (database.User, error) {
	if m.err != nil {
		return database.User{}, m.err
	}
	u, ok := m.userByEmail[email]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T) database.User {
	t.Helper()
	return database.User{
		ID:             uuid.New(),
		Email:          "owner@test.com",
		HashedPassword: hashPassword(t, "correct-password"),
		Name:           "Test Owner",
		Role:           "RESTAURANT_OWNER",
		IsActive:       true,
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func setupAuthRouter(store *mockAuthStore) *chi.Mux {
	h := handler.NewAuthHandler(store, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// --- Login tests ---

func TestLogin_ValidCredentials(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	r := setupAuthRouter(store)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"email":    " Owner@Test.com ",
		"password": "correct-password",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	token, _ := resp["accessToken"].(string)
	if token == "" {
		t.Fatal("expected accessToken in response")
	}

	claims, err := auth.ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != "RESTAURANT_OWNER" {
		t.Errorf("claims: got %+v", claims)
	}

	u := resp["user"].(map[string]interface{})
	if u["name"] != "Test Owner" {
		t.Errorf("user name: got %v", u["name"])
	}
	if _, leaked := u["hashedPassword"]; leaked {
		t.Error("password hash must not be returned")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockStore()
	store.addUser(makeTestUser(t))
	r := setupAuthRouter(store)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "owner@test.com",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if msg := decodeResponse(t, rr)["message"]; msg != "invalid credentials" {
		t.Errorf("message: got %v", msg)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	r := setupAuthRouter(newMockStore())

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "nobody@test.com",
		"password": "whatever",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	r := setupAuthRouter(newMockStore())

	rr := postJSON(t, r, "/auth/login", map[string]string{"email": "owner@test.com"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	r := setupAuthRouter(newMockStore())

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestLogin_StoreErrorIsGeneric(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("dial tcp 10.0.0.5:5432: connection refused")
	r := setupAuthRouter(store)

	rr := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "owner@test.com",
		"password": "correct-password",
	})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if msg := decodeResponse(t, rr)["message"]; msg != "internal server error" {
		t.Errorf("message leaked detail: %v", msg)
	}
}
