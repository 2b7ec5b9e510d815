// internal/domain/models/answer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Answer is a reply to a Question. At most one answer per question has
// IsAccepted set, and it is the one the question's AcceptedAnswer points at.
type Answer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content    string             `bson:"content" json:"content"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"authorId"`
	QuestionID primitive.ObjectID `bson:"question_id" json:"question"`

	Votes      `bson:",inline" json:"votes"`
	IsAccepted bool `bson:"is_accepted" json:"isAccepted"`
	IsActive   bool `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// VoteScore is the derived score of the answer.
func (a *Answer) VoteScore() int {
	return a.Votes.Score()
}

// AnswerBodyMin is the minimum answer length in characters.
const AnswerBodyMin = 20
