package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arnabjk008/quietly-backend/internal/models"
)

// SessionDuration is 30 days. There is no sliding renewal; a token keeps the
// flags it was issued with until the client signs in again.
const SessionDuration = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

// Claims carries the denormalized user attributes the dashboard needs
// without a store round-trip. They can go stale until the next issuance;
// anything security-sensitive on the intake path reads the store instead.
type Claims struct {
	jwt.RegisteredClaims
	Username            string `json:"username"`
	Email               string `json:"email"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// TokenIssuer signs and parses session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: SessionDuration}
}

// Issue signs a session token for a user. Only verified users ever reach
// this point, so token validity implies the user was verified at issuance.
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Username:            user.Username,
		Email:               user.Email,
		IsVerified:          user.IsVerified,
		IsAcceptingMessages: user.IsAcceptingMessages,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token string and returns its claims.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
