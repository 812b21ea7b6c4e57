// Package auth signs admins in against either a hosted GoTrue-compatible
// service or the local users table, and verifies the resulting access tokens.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingCode        = errors.New("authorization code is required")
	ErrCodeExchange       = errors.New("code exchange is not supported")
)

// User identifies the signed-in admin.
type User struct {
	ID    string
	Email string
}

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}

// Authenticator is the auth backend behind the admin console.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	Verify(ctx context.Context, accessToken string) (*User, error)
	SignOut(ctx context.Context, accessToken string) error
}
