// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the auth endpoints (typically at /api/auth).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.With(auth.RequireSignedIn).Get("/me", h.ServeMe)
	return r
}
