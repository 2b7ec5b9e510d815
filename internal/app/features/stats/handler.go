// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	metricsstore "github.com/dalemusser/stackit/internal/app/store/metrics"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog}
}

// Routes mounts the site counters (typically at /api/stats).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}

// Serve handles GET /api/stats: {questions, answers, users, topics}.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := metricsstore.FetchSiteCounts(ctx, h.DB)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "site stats", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, counts)
}
