package auth

import "time"

// Session is the outcome of a successful admin login.
type Session struct {
	Email             string
	AccessToken       string
	AccessTokenExpiry time.Time
}

// AdminClaims describes the validated identity extracted from an access token.
type AdminClaims struct {
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
	IssuedAt  time.Time
}
