package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/arnabjk008/quietly-backend/internal/middleware"
	"github.com/arnabjk008/quietly-backend/internal/services"
)

// SignInRequest carries the credentials; identifier is an email or username.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SignInResponse returns the session token and the denormalized user view.
type SignInResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Token   string                 `json:"token,omitempty"`
	User    map[string]interface{} `json:"user,omitempty"`
}

// SignIn validates credentials and issues a session token.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SignInResponse{Success: false, Message: "Invalid request body"})
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			writeJSON(w, http.StatusBadRequest, SignInResponse{Success: false, Message: "Identifier and password are required"})
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, SignInResponse{Success: false, Message: "Invalid Credentials or no user found"})
		case errors.Is(err, services.ErrNotVerified):
			writeJSON(w, http.StatusForbidden, SignInResponse{Success: false, Message: "User not verified Please verify your email first"})
		case errors.Is(err, services.ErrWrongPassword):
			writeJSON(w, http.StatusUnauthorized, SignInResponse{Success: false, Message: "Password is incorrect"})
		default:
			log.Printf("ERROR: sign-in failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, SignInResponse{Success: false, Message: "Failed to sign in"})
		}
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("ERROR: failed to issue session token: %v", err)
		writeJSON(w, http.StatusInternalServerError, SignInResponse{Success: false, Message: "Failed to sign in"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, SignInResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User: map[string]interface{}{
			"id":                  user.ID.Hex(),
			"username":            user.Username,
			"email":               user.Email,
			"isVerified":          user.IsVerified,
			"isAcceptingMessages": user.IsAcceptingMessages,
		},
	})
}

// Me echoes the session claims so the dashboard can refresh its cached
// flags. The values are as of token issuance, not a live store read.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "Not Authenticated Please log in first"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":                  claims.Subject,
			"username":            claims.Username,
			"email":               claims.Email,
			"isVerified":          claims.IsVerified,
			"isAcceptingMessages": claims.IsAcceptingMessages,
		},
	})
}
