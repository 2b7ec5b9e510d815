package login_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/login"
	"github.com/dalemusser/stackit/internal/app/store/audit"
	"github.com/dalemusser/stackit/internal/app/system/auditlog"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/ratelimit"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type tokenBody struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

func newHandler(t *testing.T, db *mongo.Database) *login.Handler {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", 0)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	limiter := ratelimit.NewLoginLimiter()
	t.Cleanup(limiter.Close)
	logger := zap.NewNop()
	audLog := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: auditlog.ModeDB, Admin: auditlog.ModeDB})
	return login.NewHandler(db, tokens, limiter, audLog, uierrors.NewErrorLogger(logger), logger)
}

func TestHandleRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	rec := testutil.NewRecorder()
	h.HandleRegister(rec, testutil.NewJSONRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "gopher_1", "email": "Gopher@Example.com", "password": "hunter22",
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var body tokenBody
	rec.Decode(t, &body)
	if body.Message != "User registered successfully" || body.User.Username != "gopher_1" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.User.Email != "gopher@example.com" || body.User.Role != "member" {
		t.Errorf("user = %+v", body.User)
	}
	id, err := h.Tokens.Resolve(body.Token)
	if err != nil || id.Hex() != body.User.ID {
		t.Errorf("token resolves to %v (%v), want %s", id, err, body.User.ID)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, _ := audit.New(db).Count(ctx, audit.QueryFilter{EventType: audit.EventRegistered})
	if n != 1 {
		t.Errorf("registered audit events = %d, want 1", n)
	}
}

func TestHandleRegister_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreateUser(ctx, "taken")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"duplicate email", map[string]string{"username": "fresh", "email": "taken@example.com", "password": "hunter22"}, http.StatusConflict, "User with this email already exists"},
		{"duplicate username ignoring case", map[string]string{"username": "TAKEN", "email": "new@example.com", "password": "hunter22"}, http.StatusConflict, "Username already taken"},
		{"bad username", map[string]string{"username": "a b", "email": "x@example.com", "password": "hunter22"}, http.StatusBadRequest, ""},
		{"short password", map[string]string{"username": "someone", "email": "x@example.com", "password": "123"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleRegister(rec, testutil.NewJSONRequest(http.MethodPost, "/api/auth/register", tt.body))
			rec.AssertStatus(t, tt.wantStatus)
			if tt.wantMsg != "" && rec.Message() != tt.wantMsg {
				t.Errorf("message = %q, want %q", rec.Message(), tt.wantMsg)
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "alice")

	rec := testutil.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "ALICE@example.com", "password": testutil.FixturePassword,
	}))
	rec.AssertStatus(t, http.StatusOK)
	var body tokenBody
	rec.Decode(t, &body)
	if body.Message != "Login successful" || body.User.ID != u.ID.Hex() {
		t.Errorf("unexpected body %+v", body)
	}

	for _, in := range []map[string]string{
		{"email": "alice@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "whatever"},
	} {
		rec := testutil.NewRecorder()
		h.HandleLogin(rec, testutil.NewJSONRequest(http.MethodPost, "/api/auth/login", in))
		rec.AssertStatus(t, http.StatusBadRequest)
		if rec.Message() != "Invalid credentials" {
			t.Errorf("message = %q", rec.Message())
		}
	}

	failed, _ := audit.New(db).Count(context.Background(), audit.QueryFilter{Category: audit.CategoryAuth})
	if failed != 3 {
		t.Errorf("auth audit events = %d, want 3", failed)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	var last *testutil.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = testutil.NewRecorder()
		h.HandleLogin(last, testutil.NewJSONRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email": "victim@example.com", "password": "guess",
		}))
	}
	last.AssertStatus(t, http.StatusTooManyRequests)
}

func TestServeMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "bob")

	rec := testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/auth/me", nil, u))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"username":"bob"`)
	if body := rec.Body.String(); strings.Contains(body, "password") {
		t.Errorf("password hash leaked: %s", body)
	}

	rec = testutil.NewRecorder()
	h.ServeMe(rec, testutil.NewRequest(http.MethodGet, "/api/auth/me"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
