package notificationstore

import (
	"context"
	"errors"
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
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Create inserts n unread. If CreatedAt is zero, it's set to time.Now().UTC().
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.IsRead = false
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// List returns one page of the recipient's notifications, newest first.
func (s *Store) List(ctx context.Context, recipientID primitive.ObjectID, page paging.Page) ([]models.Notification, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"recipient_id": recipientID},
		page.Apply(options.Find(), "created_at", -1))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread returns how many of the recipient's notifications are unread.
func (s *Store) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

// MarkRead flags one notification read. It fails with ErrNotFound when the
// record is missing and ErrForbidden when it belongs to someone else.
func (s *Store) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
	).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	exists, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if exists > 0 {
		return apperr.Forbidden("Not authorized to update this notification")
	}
	return apperr.NotFound("Notification")
}

// MarkAllRead flags every unread notification of the recipient read and
// returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
