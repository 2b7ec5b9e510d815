// internal/app/features/search/handler.go
package search

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxSuggestions caps the title matches returned to the search box.
const maxSuggestions = 5

type Handler struct {
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	Questions *questionstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:       logger,
		ErrLog:    errLog,
		Questions: questionstore.New(db),
	}
}

// Routes mounts the title search (typically at /api/search).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}

// Serve handles GET /api/search?q=. An empty query returns an empty list.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	if q == "" {
		uierrors.WriteJSON(w, http.StatusOK, []questionstore.TitleMatch{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	matches, err := h.Questions.SearchTitles(ctx, q, maxSuggestions)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "search titles", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, matches)
}
