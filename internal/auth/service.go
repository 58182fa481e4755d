package auth

import (
	"errors"
	"time"

	"cnpj-data-api/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const tokenTTL = 24 * time.Hour

type AuthService struct {
	CFG *config.Config
}

// Login validates the admin credentials against the configured account and
// issues a signed access token.
func (s *AuthService) Login(creds Credentials) (*TokenResponse, error) {
	if s.CFG.AdminEmail == "" || s.CFG.AdminPasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if creds.Email != s.CFG.AdminEmail {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.CFG.AdminPasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  creds.Email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString([]byte(s.CFG.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int(tokenTTL.Seconds()),
	}, nil
}
