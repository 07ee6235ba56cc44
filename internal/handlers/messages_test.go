package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arnabjk008/quietly-backend/internal/models"
)

func TestSendMessageAppends(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	start := time.Now()

	rec, body := env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": "you are doing great, keep going",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message sent successfully", body["message"])

	user, err := env.store.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, user.Messages, 1)
	assert.Equal(t, "you are doing great, keep going", user.Messages[0].Content)
	assert.False(t, user.Messages[0].CreatedAt.Before(start))
	assert.False(t, user.Messages[0].ID.IsZero())
}

func TestSendMessageNotAccepting(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", false)

	rec, body := env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": "this should never be delivered",
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "User is not accepting messages", body["message"])

	user, err := env.store.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Messages, "collection must be unchanged")
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "nobody", "content": "hello out there, anyone home?",
	}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["message"])
}

func TestSendMessageContentBounds(t *testing.T) {
	env := newTestEnv(t)
	env.seedVerified(t, "alice", "a@x.com", "secret1", true)

	rec, _ := env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": "too short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'x'
	}
	rec, _ = env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": string(long),
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bounds are measured in characters: a 300-char CJK message is well over
	// 500 bytes but still fits, while a 4-char emoji message does not reach
	// the minimum despite its byte length.
	rec, body := env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": strings.Repeat("日", 300),
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code, "body: %v", body)

	rec, _ = env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": strings.Repeat("😀", 4),
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": strings.Repeat("日", 501),
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMessagesSortedByRecency(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	token, err := env.tokens.Issue(owner)
	require.NoError(t, err)

	// Insert out of chronological order
	base := time.Now()
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		require.NoError(t, env.store.AppendMessage(context.Background(), "alice", models.Message{
			ID:        primitive.NewObjectID(),
			Content:   "anonymous note for the owner",
			CreatedAt: base.Add(-offset),
		}))
	}

	rec, body := env.do(t, http.MethodGet, "/api/get-messages", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	raw, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, raw, 3)

	var previous time.Time
	for i, item := range raw {
		m := item.(map[string]interface{})
		createdAt, err := time.Parse(time.RFC3339Nano, m["createdAt"].(string))
		require.NoError(t, err)
		if i > 0 {
			assert.False(t, createdAt.After(previous), "messages must be newest first")
		}
		previous = createdAt
	}
}

func TestGetMessagesEmpty(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	token, err := env.tokens.Issue(owner)
	require.NoError(t, err)

	rec, body := env.do(t, http.MethodGet, "/api/get-messages", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	messages, ok := body["messages"].([]interface{})
	require.True(t, ok, "empty result must still be a list")
	assert.Empty(t, messages)
}

func TestGetMessagesRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodGet, "/api/get-messages", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/get-messages", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteMessage(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	token, err := env.tokens.Issue(owner)
	require.NoError(t, err)

	msg := models.Message{ID: primitive.NewObjectID(), Content: "a deletable message body", CreatedAt: time.Now()}
	require.NoError(t, env.store.AppendMessage(context.Background(), "alice", msg))

	rec, body := env.do(t, http.MethodDelete, "/api/delete-message/"+msg.ID.Hex(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message deleted successfully", body["message"])

	user, err := env.store.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Messages)

	// Deleting it again is a not-found
	rec, _ = env.do(t, http.MethodDelete, "/api/delete-message/"+msg.ID.Hex(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMessageNotOwned(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	bob := env.seedVerified(t, "bob", "b@x.com", "secret1", true)

	msg := models.Message{ID: primitive.NewObjectID(), Content: "this belongs to bob only", CreatedAt: time.Now()}
	require.NoError(t, env.store.AppendMessage(context.Background(), "bob", msg))

	aliceToken, err := env.tokens.Issue(alice)
	require.NoError(t, err)

	rec, _ := env.do(t, http.MethodDelete, "/api/delete-message/"+msg.ID.Hex(), nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Neither collection was mutated
	bobUser, err := env.store.FindByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobUser.Messages, 1)
	aliceUser, err := env.store.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceUser.Messages)
}

func TestDeleteMessageInvalidID(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	token, err := env.tokens.Issue(owner)
	require.NoError(t, err)

	rec, _ := env.do(t, http.MethodDelete, "/api/delete-message/not-an-object-id", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptMessagesToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedVerified(t, "alice", "a@x.com", "secret1", true)
	token, err := env.tokens.Issue(owner)
	require.NoError(t, err)

	rec, body := env.do(t, http.MethodGet, "/api/accept-messages", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isAcceptingMessages"])

	rec, body = env.do(t, http.MethodPost, "/api/accept-messages", map[string]bool{"acceptMessages": false}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isAcceptingMessages"])

	// Toggle is idempotent
	rec, _ = env.do(t, http.MethodPost, "/api/accept-messages", map[string]bool{"acceptMessages": false}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	// The read path reflects the live store value even though the token
	// still carries the stale accepting=true claim
	rec, body = env.do(t, http.MethodGet, "/api/accept-messages", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isAcceptingMessages"])

	// And intake now refuses
	rec, _ = env.do(t, http.MethodPost, "/api/send-message", map[string]string{
		"username": "alice", "content": "should bounce off the closed door",
	}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
