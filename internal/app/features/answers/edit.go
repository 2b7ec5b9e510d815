// internal/app/features/answers/edit.go
package answers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	"github.com/dalemusser/stackit/internal/app/policy/contentpolicy"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stackit/internal/app/system/inputval"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type answerInput struct {
	Content    string `json:"content"`
	QuestionID string `json:"questionId"`
}

type answerResponse struct {
	Message string       `json:"message"`
	Answer  views.Answer `json:"answer"`
}

// HandleCreate handles POST /api/answers. The question's author is
// notified unless they answered their own question.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in answerInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create answer: decode", err)
		return
	}
	if err := inputval.CheckNewAnswer(in.Content, in.QuestionID); err != nil {
		h.ErrLog.Write(w, r, "create answer: validate", err)
		return
	}
	qid, _ := primitive.ObjectIDFromHex(in.QuestionID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Questions.GetActive(ctx, qid)
	if err != nil {
		h.ErrLog.Write(w, r, "create answer: load question", err)
		return
	}

	a, err := h.insertLinked(ctx, q.ID, me.UserID, htmlsanitize.Normalize(in.Content))
	if err != nil {
		h.ErrLog.Write(w, r, "create answer", err)
		return
	}
	if err := h.Users.AddAnswer(ctx, me.UserID, a.ID); err != nil {
		h.Log.Warn("create answer: link to author failed",
			zap.String("answer_id", a.ID.Hex()),
			zap.Error(err))
	}

	h.Notifier.Notify(ctx, notify.Notice{
		Type:        models.NotifyAnswer,
		RecipientID: q.AuthorID,
		SenderID:    me.UserID,
		Message:     notify.AnsweredMessage(me.Username, q.Title),
		QuestionID:  &q.ID,
		AnswerID:    &a.ID,
	})

	h.respond(ctx, w, r, http.StatusCreated, "Answer created successfully", a)
}

// insertLinked stores the answer and adds it to its question. If the
// question vanished in between, the new answer is removed again.
func (h *Handler) insertLinked(ctx context.Context, questionID, authorID primitive.ObjectID, content string) (models.Answer, error) {
	a, err := h.Answers.Create(ctx, questionID, authorID, content)
	if err != nil {
		return models.Answer{}, err
	}
	linkErr := h.Questions.AddAnswer(ctx, questionID, a.ID)
	if linkErr == nil {
		return a, nil
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
	defer cancel()
	if _, err := h.Answers.HardDelete(cleanupCtx, a.ID); err != nil {
		h.Log.Warn("create answer: orphan cleanup failed",
			zap.String("answer_id", a.ID.Hex()),
			zap.Error(err))
	}
	return models.Answer{}, linkErr
}

// HandleUpdate handles PUT /api/answers/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Answer")
	if err != nil {
		h.ErrLog.Write(w, r, "update answer", err)
		return
	}

	var in answerInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "update answer: decode", err)
		return
	}
	if err := inputval.CheckAnswer(in.Content); err != nil {
		h.ErrLog.Write(w, r, "update answer: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Answers.GetActive(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "update answer: load", err)
		return
	}
	if !contentpolicy.CanModify(me, existing.AuthorID) {
		h.ErrLog.Write(w, r, "update answer", apperr.Forbidden("Not authorized to update this answer"))
		return
	}

	a, err := h.Answers.UpdateContent(ctx, id, htmlsanitize.Normalize(in.Content))
	if err != nil {
		h.ErrLog.Write(w, r, "update answer", err)
		return
	}
	h.respond(ctx, w, r, http.StatusOK, "Answer updated successfully", a)
}

// HandleDelete handles DELETE /api/answers/{id} (soft delete).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Answer")
	if err != nil {
		h.ErrLog.Write(w, r, "delete answer", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Answers.GetActive(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "delete answer: load", err)
		return
	}
	if !contentpolicy.CanModify(me, existing.AuthorID) {
		h.ErrLog.Write(w, r, "delete answer", apperr.Forbidden("Not authorized to delete this answer"))
		return
	}
	if err := h.Answers.SoftDelete(ctx, id); err != nil {
		h.ErrLog.Write(w, r, "delete answer", err)
		return
	}
	uierrors.WriteMessage(w, http.StatusOK, "Answer deleted successfully")
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, msg string, a models.Answer) {
	out, err := views.Answers(ctx, h.Users, []models.Answer{a})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load answer author", err)
		return
	}
	uierrors.WriteJSON(w, status, answerResponse{Message: msg, Answer: out[0]})
}
