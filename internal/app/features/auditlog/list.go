// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/store/audit"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// listItem is an audit event with actor and target usernames resolved.
// Names are empty when the account no longer exists.
type listItem struct {
	audit.Event
	ActorName  string `json:"actorName,omitempty"`
	TargetName string `json:"targetName,omitempty"`
}

type listResponse struct {
	Events     []listItem  `json:"events"`
	Pagination paging.Info `json:"pagination"`
}

// ServeList handles GET /api/admin/audit. Optional filters: category,
// event_type, start_date and end_date (YYYY-MM-DD, inclusive).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r, pageSize)
	filter := audit.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
		Limit:     int64(page.Limit),
		Offset:    page.Skip(),
	}
	if t, err := time.Parse("2006-01-02", query.Get(r, "start_date")); err == nil {
		filter.Since = &t
	}
	if t, err := time.Parse("2006-01-02", query.Get(r, "end_date")); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.Until = &endOfDay
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: query", err)
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: count", err)
		return
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names, err := h.Users.Summaries(ctx, ids)
	if err != nil {
		// Names are cosmetic; list the events without them.
		h.Log.Warn("audit list: resolve usernames failed", zap.Error(err))
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{Event: e}
		if e.ActorID != nil {
			item.ActorName = names[*e.ActorID].Username
		}
		if e.UserID != nil {
			item.TargetName = names[*e.UserID].Username
		}
		items = append(items, item)
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Events:     items,
		Pagination: page.Summarize(total),
	})
}
