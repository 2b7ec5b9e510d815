// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default page sizes. Questions use QuestionPageSize, notifications use
// NotificationPageSize; MaxLimit caps any caller-supplied limit.
const (
	QuestionPageSize     = 10
	NotificationPageSize = 20
	MaxLimit             = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Parse reads "page" and "limit" from the query string. Missing, invalid or
// non-positive values fall back to page 1 and defaultLimit; limit is capped
// at MaxLimit.
func Parse(r *http.Request, defaultLimit int) Page {
	p := Page{Number: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// Apply sets skip/limit and the sort on find. A trailing _id key keeps the
// order stable when sort values tie.
func (p Page) Apply(find *options.FindOptions, sortField string, order int) *options.FindOptions {
	return find.
		SetSort(bson.D{{Key: sortField, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
}

// Info is the pagination block returned alongside list results.
type Info struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// Summarize builds Info for a total document count.
func (p Page) Summarize(total int64) Info {
	pages := 0
	if p.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return Info{Current: p.Number, Pages: pages, Total: total}
}
