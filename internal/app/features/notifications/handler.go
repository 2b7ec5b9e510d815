// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Notifier *notify.Dispatcher
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(notifier *notify.Dispatcher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Notifier: notifier, Log: logger, ErrLog: errLog}
}

// Routes mounts the inbox endpoints (typically at /api/notifications).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Put("/read-all", h.HandleReadAll)
	r.Put("/{id}/read", h.HandleRead)
	return r
}

// ServeList handles GET /api/notifications.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	page := paging.Parse(r, paging.NotificationPageSize)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inbox, err := h.Notifier.List(ctx, me.UserID, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, inbox)
}

// HandleRead handles PUT /api/notifications/{id}/read. Someone else's
// notification is reported as not found.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Notification")
	if err != nil {
		h.ErrLog.Write(w, r, "mark notification read", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifier.MarkRead(ctx, id, me.UserID); err != nil {
		if errors.Is(err, apperr.ErrForbidden) {
			err = apperr.NotFound("Notification")
		}
		h.ErrLog.Write(w, r, "mark notification read", err)
		return
	}
	uierrors.WriteMessage(w, http.StatusOK, "Notification marked as read")
}

// HandleReadAll handles PUT /api/notifications/read-all.
func (h *Handler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifier.MarkAllRead(ctx, me.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark all notifications read", err)
		return
	}
	h.Log.Debug("notifications marked read",
		zap.String("user_id", me.UserID.Hex()),
		zap.Int64("count", n))
	uierrors.WriteMessage(w, http.StatusOK, "All notifications marked as read")
}
