package services

import (
	"context"
	"errors"

	"github.com/arnabjk008/quietly-backend/internal/models"
	"github.com/arnabjk008/quietly-backend/internal/store"
	"github.com/arnabjk008/quietly-backend/pkg/utils"
)

// Sign-in failures, in the order they are checked. Wrong identifier and
// wrong password get different errors internally; the handler decides what
// to reveal to the client.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials or no user found")
	ErrNotVerified        = errors.New("user not verified")
	ErrWrongPassword      = errors.New("password is incorrect")
)

// UserFinder is the slice of the store the authenticator needs.
type UserFinder interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// Authenticator validates credentials against the store.
type Authenticator struct {
	users UserFinder
}

func NewAuthenticator(users UserFinder) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate matches the identifier against the exact email or username,
// requires the account to be verified, then checks the password hash.
func (a *Authenticator) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	if identifier == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.users.FindByIdentifier(ctx, utils.NormalizeUsername(identifier))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Unverified accounts cannot sign in regardless of password correctness.
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	if !utils.VerifyPassword(password, user.Password) {
		return nil, ErrWrongPassword
	}

	return user, nil
}
