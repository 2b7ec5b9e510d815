// internal/domain/models/votes.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Votes holds the two voter sets shared by questions and answers.
// A user id appears in at most one of the two sets.
type Votes struct {
	Upvoters   []primitive.ObjectID `bson:"upvoters" json:"upvotes"`
	Downvoters []primitive.ObjectID `bson:"downvoters" json:"downvotes"`
}

// Score is |upvoters| - |downvoters|. It is computed on read and never stored.
func (v Votes) Score() int {
	return len(v.Upvoters) - len(v.Downvoters)
}

// VoteOf returns "up", "down" or "" for the given user.
func (v Votes) VoteOf(userID primitive.ObjectID) string {
	for _, id := range v.Upvoters {
		if id == userID {
			return VoteUp
		}
	}
	for _, id := range v.Downvoters {
		if id == userID {
			return VoteDown
		}
	}
	return ""
}

// Vote directions accepted by the vote endpoints.
const (
	VoteUp   = "up"
	VoteDown = "down"
	VoteNone = "none"
)

// IsValidVote reports whether dir is a recognised vote direction.
func IsValidVote(dir string) bool {
	switch dir {
	case VoteUp, VoteDown, VoteNone:
		return true
	}
	return false
}
