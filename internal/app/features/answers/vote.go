// internal/app/features/answers/vote.go
package answers

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/app/system/voting"
)

// HandleVote handles PUT /api/answers/{id}/vote.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Answer")
	if err != nil {
		h.ErrLog.Write(w, r, "vote answer", err)
		return
	}
	var in views.VoteInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "vote answer: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	score, err := h.Votes.Apply(ctx, voting.Answer, id, me.UserID, in.VoteType)
	if err != nil {
		h.ErrLog.Write(w, r, "vote answer", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, views.VoteResponse{Message: "Vote recorded successfully", VoteScore: score})
}

// HandleAccept handles PUT /api/answers/{id}/accept. Only the question's
// author may accept; accepting another answer moves the mark.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Answer")
	if err != nil {
		h.ErrLog.Write(w, r, "accept answer", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, a, err := h.Accept.Accept(ctx, id, me)
	if err != nil {
		h.ErrLog.Write(w, r, "accept answer", err)
		return
	}
	h.respond(ctx, w, r, http.StatusOK, "Answer accepted successfully", a)
}
