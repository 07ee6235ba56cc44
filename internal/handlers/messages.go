package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arnabjk008/quietly-backend/internal/middleware"
	"github.com/arnabjk008/quietly-backend/internal/models"
	"github.com/arnabjk008/quietly-backend/internal/store"
	"github.com/arnabjk008/quietly-backend/pkg/utils"
)

// SendMessageRequest is the anonymous submission payload.
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// AcceptMessagesRequest toggles the owner's acceptance flag.
type AcceptMessagesRequest struct {
	AcceptMessages bool `json:"acceptMessages"`
}

// GetMessagesResponse lists the owner's messages, newest first.
type GetMessagesResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Messages []models.Message `json:"messages"`
}

// AcceptMessagesResponse reports the current acceptance flag.
type AcceptMessagesResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message,omitempty"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}

// SendMessage appends an anonymous message to the recipient's collection.
// The acceptance flag is read live from the store, never from a token.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := utils.ValidateMessageContent(req.Content); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
		return
	}

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	err := h.store.AppendMessage(r.Context(), utils.NormalizeUsername(req.Username), msg)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Message sent successfully"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "User not found"})
	case errors.Is(err, store.ErrNotAccepting):
		writeJSON(w, http.StatusForbidden, AuthResponse{Success: false, Message: "User is not accepting messages"})
	default:
		log.Printf("ERROR: failed to append message: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to send message"})
	}
}

// GetMessages returns the authenticated owner's messages sorted by recency.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromRequest(w, r)
	if !ok {
		return
	}

	messages, err := h.store.MessagesByRecency(r.Context(), ownerID)
	if err != nil {
		log.Printf("ERROR: failed to list messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, GetMessagesResponse{
			Success:  false,
			Message:  "Failed to get messages",
			Messages: []models.Message{},
		})
		return
	}

	writeJSON(w, http.StatusOK, GetMessagesResponse{Success: true, Messages: messages})
}

// DeleteMessage removes one of the owner's messages. A message outside the
// owner's collection is reported as not found and nothing is mutated.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromRequest(w, r)
	if !ok {
		return
	}

	messageID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "messageID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid message id"})
		return
	}

	err = h.store.RemoveMessage(r.Context(), ownerID, messageID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Message deleted successfully"})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrMessageNotFound):
		writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "Message not found or already deleted"})
	default:
		log.Printf("ERROR: failed to delete message: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to delete message"})
	}
}

// GetAcceptMessages reads the owner's acceptance flag live from the store.
func (h *Handler) GetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromRequest(w, r)
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "User not found"})
			return
		}
		log.Printf("ERROR: failed to read acceptance flag: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to get the message acceptance status"})
		return
	}

	writeJSON(w, http.StatusOK, AcceptMessagesResponse{
		Success:             true,
		Message:             "User found",
		IsAcceptingMessages: user.IsAcceptingMessages,
	})
}

// SetAcceptMessages toggles the owner's acceptance flag. Idempotent.
func (h *Handler) SetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDFromRequest(w, r)
	if !ok {
		return
	}

	var req AcceptMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	err := h.store.SetAcceptance(r.Context(), ownerID, req.AcceptMessages)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, AcceptMessagesResponse{
			Success:             true,
			Message:             "Message acceptance status updated successfully",
			IsAcceptingMessages: req.AcceptMessages,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "User not found"})
	default:
		log.Printf("ERROR: failed to update acceptance flag: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to update the message acceptance status"})
	}
}

// ownerIDFromRequest resolves the authenticated owner's document id from the
// session claims. Writes the error response itself when it fails.
func ownerIDFromRequest(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "Not Authenticated Please log in first"})
		return primitive.NilObjectID, false
	}

	ownerID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "User ID not found in session"})
		return primitive.NilObjectID, false
	}
	return ownerID, true
}
