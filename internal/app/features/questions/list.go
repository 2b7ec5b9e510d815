// internal/app/features/questions/list.go
package questions

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/inputval"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Questions  []views.Question `json:"questions"`
	Pagination paging.Info      `json:"pagination"`
}

// ServeList handles GET /api/questions.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r, paging.QuestionPageSize)
	filter := questionstore.ListFilter{
		Search:    strings.TrimSpace(query.Get(r, "search")),
		SortBy:    query.Get(r, "sortBy"),
		SortOrder: query.Get(r, "sortOrder"),
	}
	if raw := query.Get(r, "tags"); raw != "" {
		filter.Tags = inputval.NormalizeTags(strings.Split(raw, ","))
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	qs, total, err := h.Questions.List(ctx, filter, page)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list questions", err)
		return
	}
	out, err := views.Questions(ctx, h.Users, qs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list questions: load authors", err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Questions:  out,
		Pagination: page.Summarize(total),
	})
}

// ServeDetail handles GET /api/questions/{id}. Each call counts as a view.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id", "Question")
	if err != nil {
		h.ErrLog.Write(w, r, "question detail", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Questions.View(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "question detail: load", err)
		return
	}
	answers, err := h.Answers.ListByQuestion(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question detail: load answers", err)
		return
	}
	detail, err := views.Detail(ctx, h.Users, q, answers)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "question detail: load authors", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, detail)
}
