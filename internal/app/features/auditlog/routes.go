// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log (typically at /api/admin/audit).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
