package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arnabjk008/quietly-backend/internal/models"
	"github.com/arnabjk008/quietly-backend/internal/services"
)

// UserStore is what the handlers need from the persistence layer. The Mongo
// implementation lives in internal/store; tests use an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error)
	ResetPendingSignup(ctx context.Context, id primitive.ObjectID, passwordHash, verifyCode string, expires time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetAcceptance(ctx context.Context, id primitive.ObjectID, accepting bool) error
	AppendMessage(ctx context.Context, username string, msg models.Message) error
	RemoveMessage(ctx context.Context, ownerID, messageID primitive.ObjectID) error
	MessagesByRecency(ctx context.Context, ownerID primitive.ObjectID) ([]models.Message, error)
}

// Handler holds the injected dependencies for all HTTP handlers.
type Handler struct {
	store  UserStore
	auth   *services.Authenticator
	tokens *services.TokenIssuer
	email  services.EmailSender
}

func New(store UserStore, tokens *services.TokenIssuer, email services.EmailSender) *Handler {
	return &Handler{
		store:  store,
		auth:   services.NewAuthenticator(store),
		tokens: tokens,
		email:  email,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
