package answers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/stackit/internal/app/features/answers"
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	notificationstore "github.com/dalemusser/stackit/internal/app/store/notifications"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/acceptance"
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/notify"
	"github.com/dalemusser/stackit/internal/app/system/paging"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *answers.Handler {
	return newHandlerWithStore(db, notificationstore.New(db))
}

func newHandlerWithStore(db *mongo.Database, store notify.Store) *answers.Handler {
	logger := zap.NewNop()
	dispatcher := notify.New(store, userstore.New(db), questionstore.New(db), logger)
	protocol := acceptance.New(db, questionstore.New(db), answerstore.New(db), dispatcher, logger)
	return answers.NewHandler(db, protocol, dispatcher, uierrors.NewErrorLogger(logger), logger)
}

func inbox(t *testing.T, db *mongo.Database, u models.User) []models.Notification {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	rows, err := notificationstore.New(db).List(ctx, u.ID, paging.Page{Number: 1, Limit: 50})
	if err != nil {
		t.Fatalf("List notifications: %v", err)
	}
	return rows
}

const validContent = "Close the channel from the sender side only."

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	asker := fx.CreateUser(ctx, "asker")
	helper := fx.CreateUser(ctx, "helper")
	q := fx.CreateQuestion(ctx, asker, "Who should close a channel?")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/answers", map[string]string{
		"content": validContent, "questionId": q.ID.Hex(),
	}, helper))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"message":"Answer created successfully"`)
	rec.AssertContains(t, `"username":"helper"`)

	stored, err := questionstore.New(db).GetByID(ctx, q.ID)
	if err != nil || stored.AnswerCount() != 1 {
		t.Fatalf("question answers = %v (%v), want 1", stored.Answers, err)
	}

	got := inbox(t, db, asker)
	if len(got) != 1 || got[0].Type != models.NotifyAnswer {
		t.Fatalf("asker inbox = %+v", got)
	}
	if want := "helper answered your question: Who should close a channel?"; got[0].Message != want {
		t.Errorf("message = %q, want %q", got[0].Message, want)
	}

	// Answering your own question notifies nobody.
	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/answers", map[string]string{
		"content": validContent, "questionId": q.ID.Hex(),
	}, asker))
	rec.AssertStatus(t, http.StatusCreated)
	if n := len(inbox(t, db, asker)); n != 1 {
		t.Errorf("asker inbox has %d notifications, want 1", n)
	}
}

func TestHandleCreate_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "someone")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"short content", map[string]string{"content": "<p>too short</p>", "questionId": primitive.NewObjectID().Hex()}, http.StatusBadRequest},
		{"bad question id", map[string]string{"content": validContent, "questionId": "123"}, http.StatusBadRequest},
		{"missing question", map[string]string{"content": validContent, "questionId": primitive.NewObjectID().Hex()}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/answers", tt.body, u))
			rec.AssertStatus(t, tt.wantStatus)
		})
	}
}

func TestHandleUpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	author := fx.CreateUser(ctx, "author")
	stranger := fx.CreateUser(ctx, "stranger")
	admin := fx.CreateAdmin(ctx, "admin")
	q := fx.CreateQuestion(ctx, fx.CreateUser(ctx, "asker"), "How do I read a file in Go?")
	a := fx.CreateAnswer(ctx, q, author)

	put := func(u models.User, content string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]string{"content": content}, u)
		h.HandleUpdate(rec, testutil.WithChiURLParam(req, "id", a.ID.Hex()))
		return rec
	}

	rec := put(stranger, validContent)
	rec.AssertStatus(t, http.StatusForbidden)
	if rec.Message() != "Not authorized to update this answer" {
		t.Errorf("message = %q", rec.Message())
	}
	put(author, "short").AssertStatus(t, http.StatusBadRequest)
	rec = put(admin, "Use os.ReadFile for small files.")
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "os.ReadFile")

	del := func(u models.User) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", nil, u), "id", a.ID.Hex()))
		return rec
	}
	del(stranger).AssertStatus(t, http.StatusForbidden)
	del(author).AssertStatus(t, http.StatusOK)
	del(author).AssertStatus(t, http.StatusNotFound)
	put(author, validContent).AssertStatus(t, http.StatusNotFound)
}

func TestHandleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	q := fx.CreateQuestion(ctx, fx.CreateUser(ctx, "asker"), "Why is my slice aliasing?")
	a := fx.CreateAnswer(ctx, q, fx.CreateUser(ctx, "answerer"))

	score := 0
	for i, name := range []string{"v1", "v2", "v3"} {
		voter := fx.CreateUser(ctx, name)
		dir := "up"
		if i == 2 {
			dir = "down"
		}
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]string{"voteType": dir}, voter)
		h.HandleVote(rec, testutil.WithChiURLParam(req, "id", a.ID.Hex()))
		rec.AssertStatus(t, http.StatusOK)
		var body struct {
			VoteScore int `json:"voteScore"`
		}
		rec.Decode(t, &body)
		score = body.VoteScore
	}
	if score != 1 {
		t.Errorf("final score = %d, want 1", score)
	}

	rec := testutil.NewRecorder()
	req := testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]string{"voteType": "up"}, fx.CreateUser(ctx, "late"))
	h.HandleVote(rec, testutil.WithChiURLParam(req, "id", primitive.NewObjectID().Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
	if rec.Message() != "Answer not found" {
		t.Errorf("message = %q", rec.Message())
	}
}

func TestHandleAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	asker := fx.CreateUser(ctx, "asker")
	admin := fx.CreateAdmin(ctx, "admin")
	first := fx.CreateUser(ctx, "first")
	second := fx.CreateUser(ctx, "second")
	q := fx.CreateQuestion(ctx, asker, "Which mutex should I use here?")
	a1 := fx.CreateAnswer(ctx, q, first)
	a2 := fx.CreateAnswer(ctx, q, second)

	accept := func(u models.User, a models.Answer) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.HandleAccept(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", nil, u), "id", a.ID.Hex()))
		return rec
	}

	rec := accept(admin, a1)
	rec.AssertStatus(t, http.StatusForbidden)
	if rec.Message() != "Only question author can accept answers" {
		t.Errorf("message = %q", rec.Message())
	}
	accept(first, a1).AssertStatus(t, http.StatusForbidden)

	rec = accept(asker, a1)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"isAccepted":true`)
	accept(asker, a2).AssertStatus(t, http.StatusOK)

	stored, err := questionstore.New(db).GetByID(ctx, q.ID)
	if err != nil || stored.AcceptedAnswer == nil || *stored.AcceptedAnswer != a2.ID {
		t.Fatalf("accepted_answer = %v (%v), want %s", stored.AcceptedAnswer, err, a2.ID.Hex())
	}
	ids, err := answerstore.New(db).AcceptedIDs(ctx, q.ID)
	if err != nil || len(ids) != 1 || ids[0] != a2.ID {
		t.Errorf("accepted answers = %v (%v), want only %s", ids, err, a2.ID.Hex())
	}

	for _, u := range []models.User{first, second} {
		got := inbox(t, db, u)
		if len(got) != 1 || got[0].Type != models.NotifyAccept {
			t.Errorf("%s inbox = %+v, want one accept notification", u.Username, got)
		}
	}
}

// droppingStore fails every notification insert.
type droppingStore struct {
	*notificationstore.Store
}

func (droppingStore) Create(context.Context, models.Notification) (models.Notification, error) {
	return models.Notification{}, errors.New("notifications unavailable")
}

func TestHandleCreate_NotificationFailureKeepsAnswer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandlerWithStore(db, droppingStore{notificationstore.New(db)})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	asker := fx.CreateUser(ctx, "asker")
	helper := fx.CreateUser(ctx, "helper")
	q := fx.CreateQuestion(ctx, asker, "Does a lost notification lose the answer?")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/answers", map[string]string{
		"content": validContent, "questionId": q.ID.Hex(),
	}, helper))
	rec.AssertStatus(t, http.StatusCreated)

	stored, err := questionstore.New(db).GetByID(ctx, q.ID)
	if err != nil || stored.AnswerCount() != 1 {
		t.Fatalf("question answers = %v (%v), want 1", stored.Answers, err)
	}
	if n := len(inbox(t, db, asker)); n != 0 {
		t.Errorf("asker inbox has %d notifications, want 0", n)
	}
}

func TestInsertLinked_RemovesAnswerWhenQuestionIsGone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	asker := fx.CreateUser(ctx, "asker")
	helper := fx.CreateUser(ctx, "helper")
	q := fx.CreateQuestion(ctx, asker, "Is this question about to disappear?")

	if _, err := questionstore.New(db).HardDelete(ctx, q.ID); err != nil {
		t.Fatalf("HardDelete failed: %v", err)
	}

	_, err := answers.InsertLinked(h, ctx, q.ID, helper.ID, validContent)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("InsertLinked error = %v, want ErrNotFound", err)
	}
	n, err := db.Collection("answers").CountDocuments(ctx, bson.M{"question_id": q.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("orphaned answers = %d, want 0", n)
	}
}
