// internal/app/features/answers/routes.go
package answers

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the answer endpoints (typically at /api/answers). Every
// route requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Put("/{id}/vote", h.HandleVote)
	r.Put("/{id}/accept", h.HandleAccept)
	return r
}
