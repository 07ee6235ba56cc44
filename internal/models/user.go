package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is embedded in its owner's User document. The sender is never
// recorded anywhere.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // Don't return password in JSON

	// Verification state. Code fields are unset once the user is verified.
	VerifyCode        string    `bson:"verifyCode,omitempty" json:"-"`
	VerifyCodeExpires time.Time `bson:"verifyCodeExpires,omitempty" json:"-"`
	IsVerified        bool      `bson:"isVerified" json:"isVerified"`

	IsAcceptingMessages bool      `bson:"isAcceptingMessages" json:"isAcceptingMessages"`
	Messages            []Message `bson:"messages" json:"messages,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
