package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/arnabjk008/quietly-backend/internal/models"
	"github.com/arnabjk008/quietly-backend/internal/services"
	"github.com/arnabjk008/quietly-backend/internal/store"
	"github.com/arnabjk008/quietly-backend/pkg/utils"
)

// SignUpRequest represents the request to register a new account
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyCodeRequest represents the request to verify an account
type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// AuthResponse is the common success/message envelope
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckUsernameResponse represents the username availability response
type CheckUsernameResponse struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Username  string `json:"username,omitempty"`
	Message   string `json:"message"`
}

// SignUp handles account registration. A verified username or email is a
// conflict; an unverified email is reclaimed with a fresh password and code.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: err.Error()})
		return
	}

	username := utils.NormalizeUsername(req.Username)
	email := utils.NormalizeEmail(req.Email)
	ctx := r.Context()

	// A verified user already owns this username
	if _, err := h.store.FindVerifiedByUsername(ctx, username); err == nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Username already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("ERROR: username lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
		return
	}

	verifyCode, err := services.GenerateVerifyCode()
	if err != nil {
		log.Printf("ERROR: failed to generate verification code: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
		return
	}
	expiry := services.VerifyCodeExpiry(time.Now())

	existing, err := h.store.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "User already exists with this Email"})
		return

	case err == nil:
		// Unverified email: overwrite password and issue a new code
		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("ERROR: failed to hash password: %v", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
			return
		}
		if err := h.store.ResetPendingSignup(ctx, existing.ID, hashedPassword, verifyCode, expiry); err != nil {
			log.Printf("ERROR: failed to reset pending signup: %v", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
			return
		}
		username = existing.Username

	case errors.Is(err, store.ErrNotFound):
		hashedPassword, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("ERROR: failed to hash password: %v", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
			return
		}
		user := &models.User{
			Username:            username,
			Email:               email,
			Password:            hashedPassword,
			VerifyCode:          verifyCode,
			VerifyCodeExpires:   expiry,
			IsVerified:          false,
			IsAcceptingMessages: true,
			Messages:            []models.Message{},
		}
		if err := h.store.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicateUser) {
				// Lost the race against a concurrent signup for the same email
				writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "User already exists with this Email"})
				return
			}
			log.Printf("ERROR: failed to create user: %v", err)
			writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
			return
		}

	default:
		log.Printf("ERROR: email lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error Registering User"})
		return
	}

	// The record stays pending if dispatch fails; the user re-triggers signup
	if err := h.email.SendVerificationEmail(ctx, email, username, verifyCode); err != nil {
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Failed to send verification email"})
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, Message: "User Registered Successfully please verify your email"})
}

// VerifyCode handles the one-time verification code submission.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Invalid request body"})
		return
	}

	ctx := r.Context()
	user, err := h.store.FindByUsername(ctx, utils.NormalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "User not found"})
			return
		}
		log.Printf("ERROR: user lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error verifying user"})
		return
	}

	// Codes are single-use; once consumed there is nothing left to verify
	if user.VerifyCode == "" {
		writeJSON(w, http.StatusNotFound, AuthResponse{Success: false, Message: "No active verification code for this user"})
		return
	}

	if !services.CodesMatch(user.VerifyCode, req.Code) {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Verification code is incorrect"})
		return
	}

	// Expiry is terminal for the code even when it matches
	if time.Now().After(user.VerifyCodeExpires) {
		writeJSON(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "Code has expired Please signup again to get the new code"})
		return
	}

	if err := h.store.MarkVerified(ctx, user.ID); err != nil {
		log.Printf("ERROR: failed to mark user verified: %v", err)
		writeJSON(w, http.StatusInternalServerError, AuthResponse{Success: false, Message: "Error verifying user"})
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "User verified successfully"})
}

// CheckUsernameUnique reports whether a username is still available among
// verified users. Case-insensitive: "Bob" conflicts with a verified "bob".
func (h *Handler) CheckUsernameUnique(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	if err := utils.ValidateUsername(username); err != nil {
		writeJSON(w, http.StatusBadRequest, CheckUsernameResponse{
			Success:   false,
			Available: false,
			Message:   err.Error(),
		})
		return
	}

	_, err := h.store.FindVerifiedByUsername(r.Context(), utils.NormalizeUsername(username))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, CheckUsernameResponse{
			Success:   true,
			Available: false,
			Username:  username,
			Message:   "Username is already taken",
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusOK, CheckUsernameResponse{
			Success:   true,
			Available: true,
			Username:  username,
			Message:   "Username is available",
		})
	default:
		log.Printf("ERROR: username availability lookup failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, CheckUsernameResponse{
			Success:   false,
			Available: false,
			Message:   "Error checking username",
		})
	}
}
