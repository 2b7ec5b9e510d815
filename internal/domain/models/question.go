// internal/domain/models/question.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is a tagged question posted by a user.
//
// Answers is append-only from the question's side: an answer joins the set
// when it is created and is never removed, even when soft-deleted.
// AcceptedAnswer, when set, points at an answer of this question whose
// IsAccepted flag is true.
type Question struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Tags        []string           `bson:"tags" json:"tags"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"authorId"`

	Answers        []primitive.ObjectID `bson:"answers" json:"answerIds"`
	AcceptedAnswer *primitive.ObjectID  `bson:"accepted_answer,omitempty" json:"acceptedAnswer"`

	Votes    `bson:",inline" json:"votes"`
	Views    int  `bson:"views" json:"views"`
	IsActive bool `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AnswerCount is the number of answers ever attached to the question.
func (q *Question) AnswerCount() int {
	return len(q.Answers)
}

// VoteScore is the derived score of the question.
func (q *Question) VoteScore() int {
	return q.Votes.Score()
}

// Tag and title limits.
const (
	QuestionTitleMin = 10
	QuestionTitleMax = 200
	QuestionBodyMin  = 20
	QuestionTagsMin  = 1
	QuestionTagsMax  = 5
)
