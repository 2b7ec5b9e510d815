// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the moderation endpoints (typically at /api/admin).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/users", h.ServeUsers)
	r.Delete("/user/{id}", h.HandleDeleteUser)
	r.Put("/user/{id}/promote", h.HandlePromote)

	r.Get("/questions", h.ServeQuestions)
	r.Delete("/question/{id}", h.HandleDeleteQuestion)

	r.Get("/answers", h.ServeAnswers)
	r.Delete("/answer/{id}", h.HandleDeleteAnswer)
	return r
}
