// internal/app/features/upload/handler.go
package upload

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/app/system/uploads"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler accepts images embedded in question and answer bodies.
type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Storage   uploads.Store
	MaxUpload int64
}

func NewHandler(storage uploads.Store, maxUpload int64, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Storage:   storage,
		MaxUpload: maxUpload,
	}
}

// Routes mounts the editor upload endpoint (typically at /api/upload-image).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleImage)
	return r
}

// HandleImage handles POST /api/upload-image (multipart field "image") and
// returns the stored object's url and public_id.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	fh, err := formutil.FormFile(r, "image")
	if err != nil {
		h.ErrLog.Write(w, r, "image upload", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Upload())
	defer cancel()

	info, err := uploads.SaveImage(ctx, h.Storage, uploads.KindImage, fh, h.MaxUpload)
	if err != nil {
		if uploads.IsUserError(err) {
			h.ErrLog.Write(w, r, "image upload", err)
			return
		}
		h.Log.Error("image upload failed", zap.String("filename", fh.Filename), zap.Error(err))
		uierrors.WriteMessage(w, http.StatusInternalServerError, "Image upload failed")
		return
	}

	h.Log.Debug("image uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	uierrors.WriteJSON(w, http.StatusOK, info)
}
