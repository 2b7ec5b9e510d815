package validators_test

import (
	"testing"
	"time"

	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	notificationstore "github.com/dalemusser/stackit/internal/app/store/notifications"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/validators"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}
	for _, expected := range []string{"users", "questions", "answers", "notifications", "audit_events"} {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

// Documents written by the stores must pass the validators.
func TestValidators_AcceptStoreDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	u, err := userstore.New(db).Create(ctx, userstore.NewUser{Username: "valid_user", Email: "valid@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("user insert rejected: %v", err)
	}
	q, err := questionstore.New(db).Create(ctx, questionstore.NewQuestion{
		Title: "A valid question title", Description: "<p>body</p>", Tags: []string{"go"}, AuthorID: u.ID,
	})
	if err != nil {
		t.Fatalf("question insert rejected: %v", err)
	}
	a, err := answerstore.New(db).Create(ctx, q.ID, u.ID, "<p>A valid answer body here.</p>")
	if err != nil {
		t.Fatalf("answer insert rejected: %v", err)
	}
	qid, aid := q.ID, a.ID
	if _, err := notificationstore.New(db).Create(ctx, models.Notification{
		RecipientID: u.ID, SenderID: primitive.NewObjectID(), Type: models.NotifyAnswer,
		Message: "hello", RelatedQuestionID: &qid, RelatedAnswerID: &aid,
	}); err != nil {
		t.Fatalf("notification insert rejected: %v", err)
	}
}

func TestValidators_RejectBadDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{
			name: "user missing required fields",
			coll: "users",
			doc:  bson.M{"username": "x"},
		},
		{
			name: "user with unknown role",
			coll: "users",
			doc: bson.M{
				"username": "x", "username_ci": "x", "email": "x@example.com",
				"password_hash": "h", "role": "superadmin",
			},
		},
		{
			name: "question with string author",
			coll: "questions",
			doc: bson.M{
				"title": "t", "description": "d", "author_id": "not-an-id",
				"is_active": true, "created_at": now,
			},
		},
		{
			name: "question with negative views",
			coll: "questions",
			doc: bson.M{
				"title": "t", "description": "d", "author_id": primitive.NewObjectID(),
				"is_active": true, "created_at": now, "views": -1,
			},
		},
		{
			name: "answer without question",
			coll: "answers",
			doc: bson.M{
				"content": "c", "author_id": primitive.NewObjectID(),
				"is_active": true, "created_at": now,
			},
		},
		{
			name: "notification with unknown type",
			coll: "notifications",
			doc: bson.M{
				"recipient_id": primitive.NewObjectID(), "type": "poke",
				"message": "m", "is_read": false, "created_at": now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("expected %s insert to be rejected", tt.coll)
			}
		})
	}
}
