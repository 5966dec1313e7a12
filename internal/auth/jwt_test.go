package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tablesidear/api/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	role := "ADMIN"

	token, err := auth.GenerateToken(secret, userID, "admin@example.com", role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("email: got %v, want admin@example.com", claims.Email)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
	if claims.Subject != userID.String() {
		t.Errorf("subject: got %v, want %v", claims.Subject, userID)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "staff@example.com", "STAFF")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	claims := auth.Claims{
		UserID: uuid.New(),
		Role:   "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := auth.ValidateToken("secret", token); err == nil {
		t.Fatal("expected error validating expired token")
	}
}
