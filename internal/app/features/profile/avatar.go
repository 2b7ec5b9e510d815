// internal/app/features/profile/avatar.go
package profile

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/app/system/uploads"
	"go.uber.org/zap"
)

type avatarResponse struct {
	Message string `json:"message"`
	Avatar  string `json:"avatar"`
}

// HandleAvatar handles POST /api/users/avatar (multipart field "avatar").
func (h *Handler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	fh, err := formutil.FormFile(r, "avatar")
	if err != nil {
		h.ErrLog.Write(w, r, "avatar upload", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	info, err := uploads.SaveImage(ctx, h.Storage, uploads.KindAvatar, fh, h.MaxUpload)
	if err != nil {
		if uploads.IsUserError(err) {
			h.ErrLog.Write(w, r, "avatar upload", err)
			return
		}
		h.Log.Error("avatar upload failed", zap.String("user_id", me.UserID.Hex()), zap.Error(err))
		uierrors.WriteMessage(w, http.StatusInternalServerError, "Avatar upload failed")
		return
	}

	if _, err := h.Users.SetAvatar(ctx, me.UserID, info.URL); err != nil {
		h.ErrLog.Write(w, r, "avatar upload: save url", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, avatarResponse{Message: "Avatar updated successfully", Avatar: info.URL})
}
