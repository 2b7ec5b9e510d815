package admin_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/stackit/internal/app/features/admin"
	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	"github.com/dalemusser/stackit/internal/app/store/audit"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *admin.Handler {
	logger := zap.NewNop()
	audLog := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})
	return admin.NewHandler(db, audLog, uierrors.NewErrorLogger(logger), logger)
}

func adminEvents(t *testing.T, db *mongo.Database, eventType string) int64 {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := audit.New(db).Count(ctx, audit.QueryFilter{Category: audit.CategoryAdmin, EventType: eventType})
	if err != nil {
		t.Fatalf("Count audit events: %v", err)
	}
	return n
}

func TestRoutes_RequireAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	member := fx.CreateUser(ctx, "member")
	boss := fx.CreateAdmin(ctx, "boss")

	router := admin.Routes(h)
	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"anonymous", testutil.NewRequest(http.MethodGet, "/users"), http.StatusUnauthorized},
		{"member", testutil.WithUser(testutil.NewRequest(http.MethodGet, "/users"), member), http.StatusForbidden},
		{"admin", testutil.WithUser(testutil.NewRequest(http.MethodGet, "/users"), boss), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestServeUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	fx.CreateUser(ctx, "member")

	rec := testutil.NewRecorder()
	h.ServeUsers(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/api/admin/users"), boss))
	rec.AssertStatus(t, http.StatusOK)

	var users []map[string]any
	rec.Decode(t, &users)
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	for _, u := range users {
		if _, ok := u["password_hash"]; ok {
			t.Error("password hash leaked")
		}
		if _, ok := u["passwordHash"]; ok {
			t.Error("password hash leaked")
		}
	}
}

func TestHandleDeleteUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	spammer := fx.CreateUser(ctx, "spammer")
	q := fx.CreateQuestion(ctx, spammer, "Buy cheap watches today")

	del := func(id string) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"), boss), "id", id)
		h.HandleDeleteUser(rec, req)
		return rec
	}

	rec := del(spammer.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	if rec.Message() != "User deleted successfully" {
		t.Errorf("message = %q", rec.Message())
	}
	if _, err := userstore.New(db).GetByID(ctx, spammer.ID); err == nil {
		t.Error("user still exists")
	}
	if _, err := questionstore.New(db).GetByID(ctx, q.ID); err != nil {
		t.Errorf("authored content should remain: %v", err)
	}
	if n := adminEvents(t, db, audit.EventUserDeleted); n != 1 {
		t.Errorf("user_deleted events = %d, want 1", n)
	}

	del(spammer.ID.Hex()).AssertStatus(t, http.StatusNotFound)
	del("junk").AssertStatus(t, http.StatusNotFound)

	rec = del(boss.ID.Hex())
	rec.AssertStatus(t, http.StatusBadRequest)
	if _, err := userstore.New(db).GetByID(ctx, boss.ID); err != nil {
		t.Errorf("admin deleted their own account: %v", err)
	}
}

func TestHandlePromote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	member := fx.CreateUser(ctx, "member")

	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest(http.MethodPut, "/"), boss), "id", member.ID.Hex())
	h.HandlePromote(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"message":"User promoted to admin"`)
	rec.AssertContains(t, `"role":"admin"`)

	got, err := userstore.New(db).GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("role = %q", got.Role)
	}
	if n := adminEvents(t, db, audit.EventUserPromoted); n != 1 {
		t.Errorf("user_promoted events = %d, want 1", n)
	}
}

func TestHandleDeleteQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	author := fx.CreateUser(ctx, "author")
	q := fx.CreateQuestion(ctx, author, "A question to be removed")
	a := fx.CreateAnswer(ctx, q, boss)

	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"), boss), "id", q.ID.Hex())
	h.HandleDeleteQuestion(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if rec.Message() != "Question deleted successfully" {
		t.Errorf("message = %q", rec.Message())
	}

	if _, err := questionstore.New(db).GetByID(ctx, q.ID); err == nil {
		t.Error("question still stored")
	}
	if _, err := answerstore.New(db).GetByID(ctx, a.ID); err == nil {
		t.Error("answer should be removed with its question")
	}

	rec = testutil.NewRecorder()
	h.HandleDeleteQuestion(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeQuestions_IncludesSoftDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	author := fx.CreateUser(ctx, "author")
	fx.CreateQuestion(ctx, author, "Still visible question")
	gone := fx.CreateQuestion(ctx, author, "Soft deleted question")
	if err := questionstore.New(db).SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeQuestions(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), boss))
	rec.AssertStatus(t, http.StatusOK)

	var qs []views.Question
	rec.Decode(t, &qs)
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	for _, q := range qs {
		if q.Author.Username != "author" {
			t.Errorf("author = %+v", q.Author)
		}
	}
}

func TestAnswers_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	boss := fx.CreateAdmin(ctx, "boss")
	author := fx.CreateUser(ctx, "author")
	helper := fx.CreateUser(ctx, "helper")
	q := fx.CreateQuestion(ctx, author, "Which mutex should I use?")
	a := fx.CreateAnswer(ctx, q, helper)
	if err := questionstore.New(db).SetAccepted(ctx, q.ID, a.ID); err != nil {
		t.Fatalf("SetAccepted: %v", err)
	}

	rec := testutil.NewRecorder()
	h.ServeAnswers(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), boss))
	rec.AssertStatus(t, http.StatusOK)
	var list []views.AdminAnswer
	rec.Decode(t, &list)
	if len(list) != 1 || list[0].QuestionTitle != "Which mutex should I use?" || list[0].Author.Username != "helper" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.WithUser(testutil.NewRequest(http.MethodDelete, "/"), boss), "id", a.ID.Hex())
	h.HandleDeleteAnswer(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if rec.Message() != "Answer deleted successfully" {
		t.Errorf("message = %q", rec.Message())
	}

	stored, err := questionstore.New(db).GetByID(ctx, q.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AnswerCount() != 0 || stored.AcceptedAnswer != nil {
		t.Errorf("question still references deleted answer: %+v", stored)
	}
	if n := adminEvents(t, db, audit.EventAnswerDeleted); n != 1 {
		t.Errorf("answer_deleted events = %d, want 1", n)
	}

	rec = testutil.NewRecorder()
	h.HandleDeleteAnswer(rec, req)
	rec.AssertStatus(t, http.StatusNotFound)
}
