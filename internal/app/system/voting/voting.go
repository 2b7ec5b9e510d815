// Package voting records up/down votes on questions and answers.
//
// Each vote is one atomic update on the target document: the actor is pulled
// from the opposite voter set and added to the chosen one in the same write,
// so the two sets stay disjoint under any interleaving of concurrent votes.
package voting

import (
	"context"
	"fmt"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Kind selects the target collection.
type Kind int

const (
	Question Kind = iota
	Answer
)

func (k Kind) String() string {
	if k == Answer {
		return "Answer"
	}
	return "Question"
}

// ErrInvalidVote is returned for a direction other than up, down or none.
var ErrInvalidVote = apperr.Invalid("Invalid vote type")

type Engine struct {
	questions *mongo.Collection
	answers   *mongo.Collection
}

func New(db *mongo.Database) *Engine {
	return &Engine{
		questions: db.Collection("questions"),
		answers:   db.Collection("answers"),
	}
}

// Apply records actorID's vote on the target and returns the resulting
// score. Repeating a direction is a no-op; VoteNone withdraws the vote.
// Soft-deleted targets are reported as not found.
func (e *Engine) Apply(ctx context.Context, kind Kind, targetID, actorID primitive.ObjectID, dir string) (int, error) {
	if actorID.IsZero() {
		return 0, apperr.ErrUnauthenticated
	}
	update, err := voteUpdate(actorID, dir)
	if err != nil {
		return 0, err
	}

	coll := e.questions
	if kind == Answer {
		coll = e.answers
	}

	var votes models.Votes
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID, "is_active": true},
		update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"upvoters": 1, "downvoters": 1}),
	).Decode(&votes)
	if err != nil {
		return 0, fmt.Errorf("vote on %s %s: %w", kind, targetID.Hex(), apperr.FromMongo(err, kind.String()))
	}
	return votes.Score(), nil
}

func voteUpdate(actorID primitive.ObjectID, dir string) (bson.M, error) {
	switch dir {
	case models.VoteUp:
		return bson.M{
			"$pull":     bson.M{"downvoters": actorID},
			"$addToSet": bson.M{"upvoters": actorID},
		}, nil
	case models.VoteDown:
		return bson.M{
			"$pull":     bson.M{"upvoters": actorID},
			"$addToSet": bson.M{"downvoters": actorID},
		}, nil
	case models.VoteNone:
		return bson.M{
			"$pull": bson.M{"upvoters": actorID, "downvoters": actorID},
		}, nil
	}
	return nil, ErrInvalidVote
}
