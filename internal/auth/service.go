package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/docadmin/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxPasswordLength = 72 // bcrypt limit
	tokenIssuer       = "docadmin"
	tokenAudience     = "docadmin-admin"
)

// Service authenticates the single configured administrator.
type Service struct {
	cfg     config.AuthConfig
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewService creates a Service from the admin credentials in cfg.
func NewService(cfg config.AuthConfig) *Service {
	s := &Service{
		cfg:     cfg,
		nowFunc: time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// Login checks the credentials against the configured admin account and issues an access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (Session, error) {
	if err := validateCredentials(input.Email, input.Password); err != nil {
		return Session{}, err
	}
	if s.cfg.AdminPasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	// Always pay the bcrypt cost so a wrong email is indistinguishable from a wrong password.
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(input.Password))
	if email != s.cfg.AdminEmail || pwErr != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, expiry, err := s.generateAccessToken(email, s.nowFunc())
	if err != nil {
		return Session{}, fmt.Errorf("generate access token: %w", err)
	}

	return Session{
		Email:             email,
		AccessToken:       token,
		AccessTokenExpiry: expiry,
	}, nil
}

// ValidateAccessToken verifies the token signature and extracts admin claims.
func (s *Service) ValidateAccessToken(tokenString string) (AdminClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return AdminClaims{}, ErrUnauthorized
	}

	parsed, err := s.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.AccessTokenSecret), nil
	})
	if err != nil || !parsed.Valid {
		return AdminClaims{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return AdminClaims{}, ErrUnauthorized
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return AdminClaims{}, ErrUnauthorized
	}
	isAdmin, _ := claims["is_admin"].(bool)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return AdminClaims{}, ErrUnauthorized
	}

	result := AdminClaims{
		Email:     email,
		IsAdmin:   isAdmin,
		ExpiresAt: exp.Time,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		result.IssuedAt = iat.Time
	}
	return result, nil
}

func (s *Service) generateAccessToken(email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	claims := jwt.MapClaims{
		"sub":      email,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
		"is_admin": true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// HashPassword produces the bcrypt hash expected in DOCADMIN_ADMIN_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("password exceeds maximum length of %d characters", maxPasswordLength)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func validateCredentials(email, password string) error {
	if len(strings.TrimSpace(email)) == 0 || len(strings.TrimSpace(password)) == 0 {
		return ErrInvalidCredentials
	}
	if len(password) > maxPasswordLength {
		return ErrInvalidCredentials
	}
	return nil
}
