// internal/app/features/admin/users.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/authz"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.uber.org/zap"
)

type promoteResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// ServeUsers handles GET /api/admin/users.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list users", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, users)
}

// HandleDeleteUser handles DELETE /api/admin/user/{id}. Content the user
// authored stays in place and shows a placeholder author.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	id, err := formutil.ObjectIDParam(r, "id", "User")
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete user", err)
		return
	}
	if authz.IsSelf(r, id) {
		h.ErrLog.Write(w, r, "admin delete user", apperr.Invalid("You cannot delete your own account"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete user: load", err)
		return
	}
	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin delete user", err)
		return
	}
	if n == 0 {
		h.ErrLog.Write(w, r, "admin delete user", apperr.NotFound("User"))
		return
	}

	h.AuditLog.UserDeleted(ctx, r, me.UserID, id, u.Username)
	h.Log.Info("user deleted",
		zap.String("user_id", id.Hex()),
		zap.String("actor_id", me.UserID.Hex()))
	uierrors.WriteMessage(w, http.StatusOK, "User deleted successfully")
}

// HandlePromote handles PUT /api/admin/user/{id}/promote.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	id, err := formutil.ObjectIDParam(r, "id", "User")
	if err != nil {
		h.ErrLog.Write(w, r, "admin promote user", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Promote(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "admin promote user", err)
		return
	}

	h.AuditLog.UserPromoted(ctx, r, me.UserID, id, u.Username)
	uierrors.WriteJSON(w, http.StatusOK, promoteResponse{Message: "User promoted to admin", User: u})
}
