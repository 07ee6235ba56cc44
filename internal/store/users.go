package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arnabjk008/quietly-backend/internal/models"
)

// Callers must be able to tell these apart: a missing user, an existing but
// refusing recipient, and a missing message are different outcomes.
var (
	ErrNotFound        = errors.New("user not found")
	ErrNotAccepting    = errors.New("user is not accepting messages")
	ErrMessageNotFound = errors.New("message not found")
	ErrDuplicateUser   = errors.New("user already exists")
)

// Users is the user repository over a single MongoDB collection. Messages
// are embedded in their owner's document, so every message operation is one
// atomic single-document update.
type Users struct {
	coll *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{coll: db.Collection("users")}
}

// EnsureIndexes creates the unique email index. Username uniqueness is only
// enforced among verified users, so it is a query-time check, not an index.
func (s *Users) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create inserts a new user document and fills in its ID.
func (s *Users) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Messages == nil {
		user.Messages = []models.Message{}
	}
	_, err := s.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent signups for the same email can both pass the lookup;
		// the unique index decides the loser.
		return ErrDuplicateUser
	}
	return err
}

// FindByID looks a user up by document id.
func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByUsername looks a user up by exact (normalized) username.
func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

// FindByEmail looks a user up by exact (normalized) email.
func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindByIdentifier matches either the email or the username exactly.
func (s *Users) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}})
}

// FindVerifiedByUsername finds a verified user by case-insensitive username.
// Used for the availability check, where "Bob" and "bob" must conflict.
func (s *Users) FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{
		"username":   primitive.Regex{Pattern: "^" + regexQuote(username) + "$", Options: "i"},
		"isVerified": true,
	})
}

func (s *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ResetPendingSignup overwrites the password and verification code of an
// unverified user. Re-signup against an unclaimed email reuses the document.
func (s *Users) ResetPendingSignup(ctx context.Context, id primitive.ObjectID, passwordHash, verifyCode string, expires time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isVerified": false},
		bson.M{"$set": bson.M{
			"password":          passwordHash,
			"verifyCode":        verifyCode,
			"verifyCodeExpires": expires,
			"updatedAt":         time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkVerified flips isVerified and removes the code fields so the code is
// single-use.
func (s *Users) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"isVerified": true, "updatedAt": time.Now()},
			"$unset": bson.M{"verifyCode": "", "verifyCodeExpires": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAcceptance updates the isAcceptingMessages flag. Idempotent.
func (s *Users) SetAcceptance(ctx context.Context, id primitive.ObjectID, accepting bool) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isAcceptingMessages": accepting, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage appends a message to the named user if and only if they are
// currently accepting. The acceptance check and the append are a single
// conditional document update, so a concurrent toggle-to-off cannot race an
// in-flight append.
func (s *Users) AppendMessage(ctx context.Context, username string, msg models.Message) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"username": username, "isAcceptingMessages": true},
		bson.M{"$push": bson.M{"messages": msg}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// No match: distinguish an unknown recipient from one who opted out.
	if _, err := s.FindByUsername(ctx, username); err != nil {
		return err // ErrNotFound or an infrastructure error
	}
	return ErrNotAccepting
}

// RemoveMessage pulls a message out of its owner's collection. A message id
// that does not belong to ownerID leaves every document untouched.
func (s *Users) RemoveMessage(ctx context.Context, ownerID, messageID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$pull": bson.M{"messages": bson.M{"_id": messageID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MessagesByRecency returns the owner's messages sorted by createdAt
// descending. An owner with no messages gets an empty, non-error result.
func (s *Users) MessagesByRecency(ctx context.Context, ownerID primitive.ObjectID) ([]models.Message, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": ownerID}}},
		{{Key: "$unwind", Value: "$messages"}},
		{{Key: "$sort", Value: bson.M{"messages.createdAt": -1}}},
		{{Key: "$group", Value: bson.M{"_id": "$_id", "messages": bson.M{"$push": "$messages"}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Messages []models.Message `bson:"messages"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		// Either the user does not exist or they have no messages yet; the
		// caller already authenticated, so treat both as empty.
		return []models.Message{}, nil
	}
	return results[0].Messages, nil
}

// regexQuote escapes regex metacharacters in a username before it is used in
// a case-insensitive match. Usernames are validated to [a-zA-Z0-9_] upstream,
// so this is belt and braces for direct store callers.
func regexQuote(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(meta); j++ {
			if s[i] == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
