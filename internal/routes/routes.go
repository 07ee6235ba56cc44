package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arnabjk008/quietly-backend/internal/handlers"
	"github.com/arnabjk008/quietly-backend/internal/middleware"
	"github.com/arnabjk008/quietly-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler, tokens *services.TokenIssuer, frontendURL string) {
	// Public auth routes
	r.Post("/api/sign-up", h.SignUp)
	r.Post("/api/verify-code", h.VerifyCode)
	r.Post("/api/sign-in", h.SignIn)
	r.Get("/api/check-username-unique", h.CheckUsernameUnique)

	// Anonymous message submission (no auth, recipient flag checked in store)
	r.Post("/api/send-message", h.SendMessage)

	// Owner-only routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		r.Get("/api/me", h.Me)
		r.Get("/api/get-messages", h.GetMessages)
		r.Delete("/api/delete-message/{messageID}", h.DeleteMessage)
		r.Get("/api/accept-messages", h.GetAcceptMessages)
		r.Post("/api/accept-messages", h.SetAcceptMessages)
	})

	// Page navigations that land on the backend get classified and bounced
	// to the right frontend page
	guard := middleware.RouteGuard(tokens, frontendURL)
	redirectToFrontend := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, frontendURL+r.URL.Path, http.StatusTemporaryRedirect)
	}))
	for _, p := range []string{"/sign-in", "/sign-up", "/verify/*", "/dashboard", "/dashboard/*", "/u/*"} {
		r.Get(p, redirectToFrontend.ServeHTTP)
	}
}
