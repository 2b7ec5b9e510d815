package metricsstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of site totals shown on the landing page. Soft-deleted
// questions and answers are counted.
type Counts struct {
	Questions int64 `json:"questions"`
	Answers   int64 `json:"answers"`
	Users     int64 `json:"users"`
	Topics    int   `json:"topics"` // distinct tags across all questions
}

// FetchSiteCounts returns the site totals. Any failed counter fails the
// whole call.
func FetchSiteCounts(ctx context.Context, db *mongo.Database) (Counts, error) {
	var (
		out Counts
		err error
	)

	for _, c := range []struct {
		coll string
		dst  *int64
	}{
		{"questions", &out.Questions},
		{"answers", &out.Answers},
		{"users", &out.Users},
	} {
		if *c.dst, err = db.Collection(c.coll).CountDocuments(ctx, bson.M{}); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", c.coll, err)
		}
	}

	tags, err := db.Collection("questions").Distinct(ctx, "tags", bson.M{"tags": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return Counts{}, fmt.Errorf("distinct tags: %w", err)
	}
	out.Topics = len(tags)

	return out, nil
}
