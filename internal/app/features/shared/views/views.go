// internal/app/features/shared/views/views.go
package views

import (
	"context"

	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is the JSON shape of a question: the stored fields plus its
// author and the derived counters.
type Question struct {
	models.Question
	Author      models.AuthorSummary `json:"author"`
	VoteScore   int                  `json:"voteScore"`
	AnswerCount int                  `json:"answerCount"`
}

// QuestionDetail is a question with its visible answers.
type QuestionDetail struct {
	Question
	AnswerList []Answer `json:"answers"`
}

// Answer is the JSON shape of an answer.
type Answer struct {
	models.Answer
	Author    models.AuthorSummary `json:"author"`
	VoteScore int                  `json:"voteScore"`
}

// AdminAnswer adds the parent question's title for moderation lists.
type AdminAnswer struct {
	Answer
	QuestionTitle string `json:"questionTitle"`
}

// Authors resolves author summaries by ID.
type Authors map[primitive.ObjectID]models.AuthorSummary

// Get returns the summary for id. Deleted accounts get a placeholder so
// their content still renders.
func (a Authors) Get(id primitive.ObjectID) models.AuthorSummary {
	if s, ok := a[id]; ok {
		return s
	}
	return models.AuthorSummary{ID: id, Username: "[deleted]"}
}

// LoadAuthors fetches the summaries for every id in one query.
func LoadAuthors(ctx context.Context, users *userstore.Store, ids []primitive.ObjectID) (Authors, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	uniq := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	m, err := users.Summaries(ctx, uniq)
	if err != nil {
		return nil, err
	}
	return Authors(m), nil
}

// NewQuestion builds the view of q.
func NewQuestion(q models.Question, authors Authors) Question {
	return Question{
		Question:    q,
		Author:      authors.Get(q.AuthorID),
		VoteScore:   q.VoteScore(),
		AnswerCount: q.AnswerCount(),
	}
}

// NewAnswer builds the view of a.
func NewAnswer(a models.Answer, authors Authors) Answer {
	return Answer{Answer: a, Author: authors.Get(a.AuthorID), VoteScore: a.VoteScore()}
}

// Questions builds views for qs, loading their authors.
func Questions(ctx context.Context, users *userstore.Store, qs []models.Question) ([]Question, error) {
	ids := make([]primitive.ObjectID, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.AuthorID)
	}
	authors, err := LoadAuthors(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, NewQuestion(q, authors))
	}
	return out, nil
}

// Answers builds views for as, loading their authors.
func Answers(ctx context.Context, users *userstore.Store, as []models.Answer) ([]Answer, error) {
	ids := make([]primitive.ObjectID, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.AuthorID)
	}
	authors, err := LoadAuthors(ctx, users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Answer, 0, len(as))
	for _, a := range as {
		out = append(out, NewAnswer(a, authors))
	}
	return out, nil
}

// Detail builds the full view of q with answers.
func Detail(ctx context.Context, users *userstore.Store, q models.Question, answers []models.Answer) (QuestionDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(answers)+1)
	ids = append(ids, q.AuthorID)
	for _, a := range answers {
		ids = append(ids, a.AuthorID)
	}
	authors, err := LoadAuthors(ctx, users, ids)
	if err != nil {
		return QuestionDetail{}, err
	}
	list := make([]Answer, 0, len(answers))
	for _, a := range answers {
		list = append(list, NewAnswer(a, authors))
	}
	return QuestionDetail{Question: NewQuestion(q, authors), AnswerList: list}, nil
}

// VoteInput is the body of both vote endpoints.
type VoteInput struct {
	VoteType string `json:"voteType"`
}

// VoteResponse reports the score after a vote.
type VoteResponse struct {
	Message   string `json:"message"`
	VoteScore int    `json:"voteScore"`
}
