package questionstore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c       *mongo.Collection
	answers *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("questions"),
		answers: db.Collection("answers"),
	}
}

// NewQuestion is the input to Create. Fields are expected to be validated
// and sanitized by the caller.
type NewQuestion struct {
	Title       string
	Description string
	Tags        []string
	AuthorID    primitive.ObjectID
}

// Create inserts an active question with empty vote sets and no answers.
func (s *Store) Create(ctx context.Context, in NewQuestion) (models.Question, error) {
	now := time.Now().UTC()
	q := models.Question{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Tags:        in.Tags,
		AuthorID:    in.AuthorID,
		Answers:     []primitive.ObjectID{},
		Votes: models.Votes{
			Upvoters:   []primitive.ObjectID{},
			Downvoters: []primitive.ObjectID{},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if _, err := s.c.InsertOne(ctx, q); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// GetByID loads a question whether or not it is active.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetActive loads a question that has not been soft-deleted.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	return s.findOne(ctx, bson.M{"_id": id, "is_active": true})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Question, error) {
	var q models.Question
	if err := s.c.FindOne(ctx, filter).Decode(&q); err != nil {
		return models.Question{}, apperr.FromMongo(err, "Question")
	}
	return q, nil
}

// View increments the view counter of an active question and returns it.
func (s *Store) View(ctx context.Context, id primitive.ObjectID) (models.Question, error) {
	var q models.Question
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$inc": bson.M{"views": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err != nil {
		return models.Question{}, apperr.FromMongo(err, "Question")
	}
	return q, nil
}

// Sort keys accepted by List. Stored fields sort in the query; voteScore and
// answerCount are derived and sort through an aggregation.
const (
	SortCreated     = "createdAt"
	SortUpdated     = "updatedAt"
	SortViews       = "views"
	SortTitle       = "title"
	SortVoteScore   = "voteScore"
	SortAnswerCount = "answerCount"
)

var storedSortFields = map[string]string{
	SortCreated: "created_at",
	SortUpdated: "updated_at",
	SortViews:   "views",
	SortTitle:   "title",
}

var derivedSortFields = map[string]bson.M{
	SortVoteScore: {"$subtract": bson.A{
		bson.M{"$size": bson.M{"$ifNull": bson.A{"$upvoters", bson.A{}}}},
		bson.M{"$size": bson.M{"$ifNull": bson.A{"$downvoters", bson.A{}}}},
	}},
	SortAnswerCount: {"$size": bson.M{"$ifNull": bson.A{"$answers", bson.A{}}}},
}

// ListFilter narrows and orders List. Search matches title or description
// case-insensitively as a literal substring. A question matches Tags when
// it carries any of them. Unknown SortBy values fall back to createdAt;
// SortOrder "asc" sorts ascending, anything else descending.
type ListFilter struct {
	Search    string
	Tags      []string
	SortBy    string
	SortOrder string
}

func (f ListFilter) match() bson.M {
	m := bson.M{"is_active": true}
	if s := strings.TrimSpace(f.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		m["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	if len(f.Tags) > 0 {
		m["tags"] = bson.M{"$in": f.Tags}
	}
	return m
}

func (f ListFilter) order() int {
	if strings.EqualFold(f.SortOrder, "asc") {
		return 1
	}
	return -1
}

// List returns one page of active questions matching f plus the total
// number of matches.
func (s *Store) List(ctx context.Context, f ListFilter, page paging.Page) ([]models.Question, int64, error) {
	match := f.match()
	total, err := s.c.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	var cur *mongo.Cursor
	if expr, ok := derivedSortFields[f.SortBy]; ok {
		cur, err = s.c.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$addFields", Value: bson.M{"_sort": expr}}},
			{{Key: "$sort", Value: bson.D{{Key: "_sort", Value: f.order()}, {Key: "_id", Value: f.order()}}}},
			{{Key: "$skip", Value: page.Skip()}},
			{{Key: "$limit", Value: int64(page.Limit)}},
			{{Key: "$project", Value: bson.M{"_sort": 0}}},
		})
	} else {
		field, ok := storedSortFields[f.SortBy]
		if !ok {
			field = "created_at"
		}
		cur, err = s.c.Find(ctx, match, page.Apply(options.Find(), field, f.order()))
	}
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Question{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// TitleMatch is a search suggestion.
type TitleMatch struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Title string             `bson:"title" json:"title"`
}

// SearchTitles returns up to limit active questions whose title contains q,
// ignoring case.
func (s *Store) SearchTitles(ctx context.Context, q string, limit int64) ([]TitleMatch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []TitleMatch{}, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"is_active": true, "title": primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}},
		options.Find().
			SetProjection(bson.M{"title": 1}).
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []TitleMatch{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByAuthor returns the author's active questions, newest first.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int64) ([]models.Question, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		find.SetLimit(limit)
	}
	return s.find(ctx, bson.M{"author_id": authorID, "is_active": true}, find)
}

// ListAll returns every question including soft-deleted ones, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Question, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
}

// TitlesByID returns the titles of the given questions.
func (s *Store) TitlesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var t TitleMatch
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out[t.ID] = t.Title
	}
	return out, cur.Err()
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Question, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Question{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Edit holds the optional fields of a question edit. Tags is applied only
// when TagsSet is true.
type Edit struct {
	Title       *string
	Description *string
	Tags        []string
	TagsSet     bool
}

// Update applies e to an active question and returns the updated record.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e Edit) (models.Question, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if e.Title != nil {
		set["title"] = strings.TrimSpace(*e.Title)
	}
	if e.Description != nil {
		set["description"] = *e.Description
	}
	if e.TagsSet {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}

	var q models.Question
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err != nil {
		return models.Question{}, apperr.FromMongo(err, "Question")
	}
	return q, nil
}

// SoftDelete marks an active question inactive. Its answers are untouched.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Question")
	}
	return nil
}

// AddAnswer appends answerID to the question's answer set.
func (s *Store) AddAnswer(ctx context.Context, questionID, answerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": questionID},
		bson.M{"$addToSet": bson.M{"answers": answerID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Question")
	}
	return nil
}

// SetAccepted points the question at answerID.
func (s *Store) SetAccepted(ctx context.Context, questionID, answerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": questionID, "is_active": true},
		bson.M{"$set": bson.M{"accepted_answer": answerID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Question")
	}
	return nil
}

// HardDelete removes the question and every answer attached to it. It
// returns the number of questions removed (0 or 1).
func (s *Store) HardDelete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount > 0 {
		if _, err := s.answers.DeleteMany(ctx, bson.M{"question_id": id}); err != nil {
			return res.DeletedCount, err
		}
	}
	return res.DeletedCount, nil
}

// DetachAnswer drops a hard-deleted answer from the question's answer set
// and clears the accepted pointer if it pointed there.
func (s *Store) DetachAnswer(ctx context.Context, questionID, answerID primitive.ObjectID) error {
	if _, err := s.c.UpdateOne(ctx,
		bson.M{"_id": questionID},
		bson.M{"$pull": bson.M{"answers": answerID}}); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": questionID, "accepted_answer": answerID},
		bson.M{"$unset": bson.M{"accepted_answer": ""}})
	return err
}
