package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arnabjk008/quietly-backend/internal/models"
	"github.com/arnabjk008/quietly-backend/internal/store"
)

// fakeStore is an in-memory stand-in for the Mongo-backed store with the
// same error contract, so handler tests run without a database.
type fakeStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrDuplicateUser
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Messages == nil {
		user.Messages = []models.Message{}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == identifier || u.Username == identifier {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.IsVerified && strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ResetPendingSignup(ctx context.Context, id primitive.ObjectID, passwordHash, verifyCode string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.IsVerified {
		return store.ErrNotFound
	}
	u.Password = passwordHash
	u.VerifyCode = verifyCode
	u.VerifyCodeExpires = expires
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsVerified = true
	u.VerifyCode = ""
	u.VerifyCodeExpires = time.Time{}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) SetAcceptance(ctx context.Context, id primitive.ObjectID, accepting bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsAcceptingMessages = accepting
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) AppendMessage(ctx context.Context, username string, msg models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			if !u.IsAcceptingMessages {
				return store.ErrNotAccepting
			}
			u.Messages = append(u.Messages, msg)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) RemoveMessage(ctx context.Context, ownerID, messageID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[ownerID]
	if !ok {
		return store.ErrNotFound
	}
	for i, m := range u.Messages {
		if m.ID == messageID {
			u.Messages = append(u.Messages[:i], u.Messages[i+1:]...)
			return nil
		}
	}
	return store.ErrMessageNotFound
}

func (f *fakeStore) MessagesByRecency(ctx context.Context, ownerID primitive.ObjectID) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[ownerID]
	if !ok {
		return []models.Message{}, nil
	}
	out := make([]models.Message, len(u.Messages))
	copy(out, u.Messages)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// sentEmail records one dispatched verification email.
type sentEmail struct {
	To       string
	Username string
	Code     string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (f *fakeEmail) SendVerificationEmail(ctx context.Context, recipientEmail, username, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, sentEmail{To: recipientEmail, Username: username, Code: code})
	return nil
}

func (f *fakeEmail) last() (sentEmail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEmail{}, false
	}
	return f.sent[len(f.sent)-1], true
}
