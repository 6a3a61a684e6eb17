package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abduss/docadmin/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "StrongPass1!"

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewService(config.AuthConfig{
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: hash,
		AccessTokenSecret: "access-secret",
		AccessTokenTTL:    time.Minute,
		BcryptCost:        bcrypt.MinCost,
	})
}

func TestLogin(t *testing.T) {
	service := newTestService(t)

	session, err := service.Login(context.Background(), LoginInput{
		Email:    "Admin@Example.com",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatalf("expected access token to be issued")
	}
	if session.Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", session.Email)
	}

	claims, err := service.ValidateAccessToken(session.AccessToken)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !claims.IsAdmin || claims.Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service := newTestService(t)

	cases := []LoginInput{
		{Email: "admin@example.com", Password: "WrongPass1!"},
		{Email: "other@example.com", Password: testPassword},
		{Email: "", Password: testPassword},
		{Email: "admin@example.com", Password: "   "},
	}
	for _, input := range cases {
		if _, err := service.Login(context.Background(), input); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login(%q) expected ErrInvalidCredentials, got %v", input.Email, err)
		}
	}
}

func TestLoginDisabledWithoutPasswordHash(t *testing.T) {
	service := NewService(config.AuthConfig{
		AdminEmail:        "admin@example.com",
		AccessTokenSecret: "access-secret",
		AccessTokenTTL:    time.Minute,
	})

	_, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: testPassword})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	service := newTestService(t)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	service.nowFunc = func() time.Time { return issued }

	session, err := service.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: testPassword})
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	service.nowFunc = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := service.ValidateAccessToken(session.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestValidateAccessTokenRejectsForeignSignature(t *testing.T) {
	service := newTestService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      "admin@example.com",
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      time.Now().Add(time.Minute).Unix(),
		"is_admin": true,
	})
	signed, err := token.SignedString([]byte("someone-else"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := service.ValidateAccessToken(signed); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := service.ValidateAccessToken(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(testPassword)); err != nil {
		t.Fatalf("hash does not match password: %v", err)
	}

	if _, err := HashPassword("", bcrypt.MinCost); err == nil {
		t.Fatalf("expected error for empty password")
	}
	long := make([]byte, maxPasswordLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long), bcrypt.MinCost); err == nil {
		t.Fatalf("expected error for overlong password")
	}
}
