// internal/app/features/questions/vote.go
package questions

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

// HandleVote handles PUT /api/questions/{id}/vote.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)
	id, err := formutil.ObjectIDParam(r, "id", "Question")
	if err != nil {
		h.ErrLog.Write(w, r, "vote question", err)
		return
	}
	var in views.VoteInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "vote question: decode", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	score, err := h.Votes.Apply(ctx, voting.Question, id, me.UserID, in.VoteType)
	if err != nil {
		h.ErrLog.Write(w, r, "vote question", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, views.VoteResponse{Message: "Vote recorded successfully", VoteScore: score})
}
