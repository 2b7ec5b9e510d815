// internal/app/features/admin/content.go
package admin

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeQuestions handles GET /api/admin/questions. Soft-deleted questions
// are included.
func (h *Handler) ServeQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	qs, err := h.Questions.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list questions", err)
		return
	}
	out, err := views.Questions(ctx, h.Users, qs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list questions: load authors", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleDeleteQuestion handles DELETE /api/admin/question/{id}. The
// question's answers go with it.
func (h *Handler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	id, err := formutil.ObjectIDParam(r, "id", "Question")
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete question", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Questions.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete question: load", err)
		return
	}
	n, err := h.Questions.HardDelete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin delete question", err)
		return
	}
	if n == 0 {
		h.ErrLog.Write(w, r, "admin delete question", apperr.NotFound("Question"))
		return
	}

	h.AuditLog.QuestionDeleted(ctx, r, me.UserID, id, q.Title)
	uierrors.WriteMessage(w, http.StatusOK, "Question deleted successfully")
}

// ServeAnswers handles GET /api/admin/answers.
func (h *Handler) ServeAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	as, err := h.Answers.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list answers", err)
		return
	}
	list, err := views.Answers(ctx, h.Users, as)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list answers: load authors", err)
		return
	}

	seen := make(map[primitive.ObjectID]struct{}, len(as))
	qids := make([]primitive.ObjectID, 0, len(as))
	for _, a := range as {
		if _, ok := seen[a.QuestionID]; !ok {
			seen[a.QuestionID] = struct{}{}
			qids = append(qids, a.QuestionID)
		}
	}
	titles, err := h.Questions.TitlesByID(ctx, qids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin list answers: load titles", err)
		return
	}

	out := make([]views.AdminAnswer, 0, len(list))
	for _, a := range list {
		out = append(out, views.AdminAnswer{Answer: a, QuestionTitle: titles[a.QuestionID]})
	}
	uierrors.WriteJSON(w, http.StatusOK, out)
}

// HandleDeleteAnswer handles DELETE /api/admin/answer/{id}.
func (h *Handler) HandleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	id, err := formutil.ObjectIDParam(r, "id", "Answer")
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete answer", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Answers.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "admin delete answer: load", err)
		return
	}
	n, err := h.Answers.HardDelete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin delete answer", err)
		return
	}
	if n == 0 {
		h.ErrLog.Write(w, r, "admin delete answer", apperr.NotFound("Answer"))
		return
	}
	if err := h.Questions.DetachAnswer(ctx, a.QuestionID, id); err != nil {
		h.Log.Warn("admin delete answer: detach from question failed",
			zap.String("answer_id", id.Hex()),
			zap.String("question_id", a.QuestionID.Hex()),
			zap.Error(err))
	}

	h.AuditLog.AnswerDeleted(ctx, r, me.UserID, id, a.QuestionID)
	uierrors.WriteMessage(w, http.StatusOK, "Answer deleted successfully")
}
