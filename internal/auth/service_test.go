package auth

import (
	"testing"

	"cnpj-data-api/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &AuthService{CFG: &config.Config{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
	}}
}

func TestLogin_Success(t *testing.T) {
	svc := testService(t, "s3cret")

	resp, err := svc.Login(Credentials{Email: "admin@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if resp.TokenType != "Bearer" || resp.Token == "" {
		t.Fatalf("unexpected response %+v", resp)
	}

	token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != "admin@example.com" || claims["role"] != "admin" {
		t.Fatalf("unexpected claims %v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := testService(t, "s3cret")

	if _, err := svc.Login(Credentials{Email: "admin@example.com", Password: "wrong"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_WrongEmail(t *testing.T) {
	svc := testService(t, "s3cret")

	if _, err := svc.Login(Credentials{Email: "intruder@example.com", Password: "s3cret"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_NoAdminConfigured(t *testing.T) {
	svc := &AuthService{CFG: &config.Config{JWTSecret: "test-secret"}}

	if _, err := svc.Login(Credentials{Email: "admin@example.com", Password: "s3cret"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
