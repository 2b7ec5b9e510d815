package answerstore

import (
	"context"
	"time"

	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("answers")}
}

// Create inserts an active, unaccepted answer to questionID.
func (s *Store) Create(ctx context.Context, questionID, authorID primitive.ObjectID, content string) (models.Answer, error) {
	now := time.Now().UTC()
	a := models.Answer{
		ID:         primitive.NewObjectID(),
		Content:    content,
		AuthorID:   authorID,
		QuestionID: questionID,
		Votes: models.Votes{
			Upvoters:   []primitive.ObjectID{},
			Downvoters: []primitive.ObjectID{},
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Answer{}, err
	}
	return a, nil
}

// GetByID loads an answer whether or not it is active.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Answer, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetActive loads an answer that has not been soft-deleted.
func (s *Store) GetActive(ctx context.Context, id primitive.ObjectID) (models.Answer, error) {
	return s.findOne(ctx, bson.M{"_id": id, "is_active": true})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Answer, error) {
	var a models.Answer
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		return models.Answer{}, apperr.FromMongo(err, "Answer")
	}
	return a, nil
}

// ListByQuestion returns the active answers of a question with the accepted
// answer first, then oldest first.
func (s *Store) ListByQuestion(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	return s.find(ctx,
		bson.M{"question_id": questionID, "is_active": true},
		options.Find().SetSort(bson.D{
			{Key: "is_accepted", Value: -1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}))
}

// ListByAuthor returns the author's active answers, newest first.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID, limit int64) ([]models.Answer, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		find.SetLimit(limit)
	}
	return s.find(ctx, bson.M{"author_id": authorID, "is_active": true}, find)
}

// ListAll returns every answer including soft-deleted ones, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Answer, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Answer, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Answer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContent replaces the content of an active answer.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Answer, error) {
	var a models.Answer
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return models.Answer{}, apperr.FromMongo(err, "Answer")
	}
	return a, nil
}

// SoftDelete marks an active answer inactive. It stays in its question's
// answer set.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Answer")
	}
	return nil
}

// ClearAcceptedExcept clears is_accepted on every answer of questionID other
// than keep.
func (s *Store) ClearAcceptedExcept(ctx context.Context, questionID, keep primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"question_id": questionID, "_id": bson.M{"$ne": keep}, "is_accepted": true},
		bson.M{"$set": bson.M{"is_accepted": false, "updated_at": time.Now().UTC()}})
	return err
}

// MarkAccepted sets is_accepted on the answer.
func (s *Store) MarkAccepted(ctx context.Context, id primitive.ObjectID) (models.Answer, error) {
	var a models.Answer
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_accepted": true, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return models.Answer{}, apperr.FromMongo(err, "Answer")
	}
	return a, nil
}

// AcceptedIDs returns the ids of the answers of questionID flagged accepted.
func (s *Store) AcceptedIDs(ctx context.Context, questionID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"question_id": questionID, "is_accepted": true},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// HardDelete removes the answer record. It returns the number removed.
func (s *Store) HardDelete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
