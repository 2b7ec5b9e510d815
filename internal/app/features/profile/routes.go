// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/profile", h.ServeProfile)
		pr.Put("/profile", h.HandleUpdateProfile)
		pr.Post("/avatar", h.HandleAvatar)
	})
	r.Get("/{id}", h.ServePublic)
	return r
}
