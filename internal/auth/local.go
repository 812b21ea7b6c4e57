package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/devmarkblog/internal/db"
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalAuthenticator checks bcrypt passwords in the users table and issues
// its own tokens. Sign-out is stateless.
type LocalAuthenticator struct {
	db     *gorm.DB
	signer *TokenSigner
}

// NewLocalAuthenticator builds a local authenticator.
func NewLocalAuthenticator(gdb *gorm.DB, signer *TokenSigner) *LocalAuthenticator {
	return &LocalAuthenticator{db: gdb, signer: signer}
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (*Session, error) {
	username := strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, eris.Wrap(err, "looking up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := User{ID: strconv.FormatUint(uint64(user.ID), 10), Email: user.Username}
	token, expiresAt, err := a.signer.Issue(identity)
	if err != nil {
		return nil, err
	}

	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: identity}, nil
}

func (a *LocalAuthenticator) ExchangeCode(context.Context, string) (*Session, error) {
	return nil, ErrCodeExchange
}

func (a *LocalAuthenticator) Verify(_ context.Context, accessToken string) (*User, error) {
	return a.signer.Parse(accessToken)
}

func (a *LocalAuthenticator) SignOut(context.Context, string) error {
	return nil
}
