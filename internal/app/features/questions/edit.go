// internal/app/features/questions/edit.go
package questions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	"github.com/dalemusser/stackit/internal/app/policy/contentpolicy"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stackit/internal/app/system/inputval"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.uber.org/zap"
)

type questionInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

type questionResponse struct {
	Message  string         `json:"message"`
	Question views.Question `json:"question"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HandleCreate handles POST /api/questions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in questionInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "create question: decode", err)
		return
	}
	var tags []string
	if in.Tags != nil {
		tags = *in.Tags
	}
	title, description := deref(in.Title), deref(in.Description)
	if err := inputval.CheckNewQuestion(title, description, tags); err != nil {
		h.ErrLog.Write(w, r, "create question: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q, err := h.Questions.Create(ctx, questionstore.NewQuestion{
		Title:       title,
		Description: htmlsanitize.Normalize(description),
		Tags:        inputval.NormalizeTags(tags),
		AuthorID:    me.UserID,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create question", err)
		return
	}
	if err := h.Users.AddQuestion(ctx, me.UserID, q.ID); err != nil {
		h.Log.Warn("create question: link to author failed",
			zap.String("question_id", q.ID.Hex()),
			zap.Error(err))
	}

	h.respond(ctx, w, r, http.StatusCreated, "Question created successfully", q)
}

// HandleUpdate handles PUT /api/questions/{id}. Only fields present in the
// body change.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Question")
	if err != nil {
		h.ErrLog.Write(w, r, "update question", err)
		return
	}

	var in questionInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "update question: decode", err)
		return
	}
	edit := questionstore.Edit{Title: in.Title}
	if in.Tags != nil {
		edit.Tags, edit.TagsSet = *in.Tags, true
	}
	if err := inputval.CheckQuestionEdit(in.Title, in.Description, edit.Tags, edit.TagsSet); err != nil {
		h.ErrLog.Write(w, r, "update question: validate", err)
		return
	}
	if in.Description != nil {
		clean := htmlsanitize.Normalize(*in.Description)
		edit.Description = &clean
	}
	if edit.TagsSet {
		edit.Tags = inputval.NormalizeTags(edit.Tags)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Questions.GetActive(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "update question: load", err)
		return
	}
	if !contentpolicy.CanModify(me, existing.AuthorID) {
		h.ErrLog.Write(w, r, "update question", apperr.Forbidden("Not authorized to update this question"))
		return
	}

	q, err := h.Questions.Update(ctx, id, edit)
	if err != nil {
		h.ErrLog.Write(w, r, "update question", err)
		return
	}
	h.respond(ctx, w, r, http.StatusOK, "Question updated successfully", q)
}

// HandleDelete handles DELETE /api/questions/{id} (soft delete).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Question")
	if err != nil {
		h.ErrLog.Write(w, r, "delete question", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	existing, err := h.Questions.GetActive(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "delete question: load", err)
		return
	}
	if !contentpolicy.CanModify(me, existing.AuthorID) {
		h.ErrLog.Write(w, r, "delete question", apperr.Forbidden("Not authorized to delete this question"))
		return
	}
	if err := h.Questions.SoftDelete(ctx, id); err != nil {
		h.ErrLog.Write(w, r, "delete question", err)
		return
	}

	h.Log.Info("question deleted",
		zap.String("question_id", id.Hex()),
		zap.String("actor_id", me.UserID.Hex()))
	uierrors.WriteMessage(w, http.StatusOK, "Question deleted successfully")
}

func (h *Handler) respond(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, msg string, q models.Question) {
	out, err := views.Questions(ctx, h.Users, []models.Question{q})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load question author", err)
		return
	}
	uierrors.WriteJSON(w, status, questionResponse{Message: msg, Question: out[0]})
}
