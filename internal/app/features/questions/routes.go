// internal/app/features/questions/routes.go
package questions

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the question endpoints (typically at /api/questions).
// Reads are public; writes require a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Put("/{id}/vote", h.HandleVote)
	})
	return r
}
