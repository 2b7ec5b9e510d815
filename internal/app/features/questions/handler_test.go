package questions_test

import (
	"net/http"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/questions"
	"github.com/dalemusser/stackit/internal/app/features/shared/views"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *questions.Handler {
	logger := zap.NewNop()
	return questions.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
}

type questionBody struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Views       int      `json:"views"`
	VoteScore   int      `json:"voteScore"`
	AnswerCount int      `json:"answerCount"`
	Author      struct {
		Username string `json:"username"`
	} `json:"author"`
}

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "asker")

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/questions", map[string]any{
		"title":       "How do I close a channel safely?",
		"description": "I keep getting a panic <script>alert(1)</script> when closing twice.",
		"tags":        []string{" Go ", "channels", "go"},
	}, u))
	rec.AssertStatus(t, http.StatusCreated)

	var body struct {
		Message  string       `json:"message"`
		Question questionBody `json:"question"`
	}
	rec.Decode(t, &body)
	if body.Message != "Question created successfully" {
		t.Errorf("message = %q", body.Message)
	}
	if got := body.Question.Tags; len(got) != 2 || got[0] != "go" || got[1] != "channels" {
		t.Errorf("tags = %v", got)
	}
	if body.Question.Author.Username != "asker" {
		t.Errorf("author = %q", body.Question.Author.Username)
	}
	if strings.Contains(body.Question.Description, "<script>") {
		t.Errorf("description not sanitized: %q", body.Question.Description)
	}

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/questions", map[string]any{
		"title": "short", "description": "tiny", "tags": []string{},
	}, u))
	rec.AssertStatus(t, http.StatusBadRequest)
	var verr struct {
		Errors []struct{ Field string } `json:"errors"`
	}
	rec.Decode(t, &verr)
	if len(verr.Errors) != 3 {
		t.Errorf("errors = %+v, want title, description and tags", verr.Errors)
	}
}

func TestServeList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "lister")
	fx.CreateQuestion(ctx, u, "Goroutines leaking in tests", "go", "testing")
	fx.CreateQuestion(ctx, u, "Mongo index on array fields", "mongodb")
	gone := fx.CreateQuestion(ctx, u, "Deleted question about go", "go")
	if err := questionstore.New(db).SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	tests := []struct {
		name   string
		target string
		want   int
		total  int64
	}{
		{"all active", "/api/questions", 2, 2},
		{"by tag", "/api/questions?tags=GO", 1, 1},
		{"search description", "/api/questions?search=array", 1, 1},
		{"paged", "/api/questions?limit=1&page=2", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.ServeList(rec, testutil.NewRequest(http.MethodGet, tt.target))
			rec.AssertStatus(t, http.StatusOK)

			var body struct {
				Questions  []questionBody `json:"questions"`
				Pagination struct {
					Current int   `json:"current"`
					Pages   int   `json:"pages"`
					Total   int64 `json:"total"`
				} `json:"pagination"`
			}
			rec.Decode(t, &body)
			if len(body.Questions) != tt.want || body.Pagination.Total != tt.total {
				t.Errorf("got %d questions, total %d; want %d, %d", len(body.Questions), body.Pagination.Total, tt.want, tt.total)
			}
		})
	}
}

func TestServeDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "detail")
	q := fx.CreateQuestion(ctx, u, "What does context cancel do?")
	fx.CreateAnswer(ctx, q, fx.CreateUser(ctx, "helper"))

	for i := 1; i <= 2; i++ {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/api/questions/"+q.ID.Hex()), "id", q.ID.Hex())
		h.ServeDetail(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		var body struct {
			questionBody
			Answers []struct {
				Author struct {
					Username string `json:"username"`
				} `json:"author"`
			} `json:"answers"`
		}
		rec.Decode(t, &body)
		if body.Views != i {
			t.Errorf("views = %d, want %d", body.Views, i)
		}
		if len(body.Answers) != 1 || body.Answers[0].Author.Username != "helper" {
			t.Errorf("answers = %+v", body.Answers)
		}
	}

	for _, id := range []string{"not-an-id", "64b7f0c2a1b2c3d4e5f60718"} {
		rec := testutil.NewRecorder()
		h.ServeDetail(rec, testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/api/questions/"+id), "id", id))
		rec.AssertStatus(t, http.StatusNotFound)
		if rec.Message() != "Question not found" {
			t.Errorf("message = %q", rec.Message())
		}
	}
}

func TestHandleUpdateAndDelete_Authorization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "owner")
	other := fx.CreateUser(ctx, "other")
	admin := fx.CreateAdmin(ctx, "moderator")
	q := fx.CreateQuestion(ctx, owner, "Original question title")

	rec := testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]any{"title": "Edited by a stranger"}, other), "id", q.ID.Hex())
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)
	if rec.Message() != "Not authorized to update this question" {
		t.Errorf("message = %q", rec.Message())
	}

	rec = testutil.NewRecorder()
	req = testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]any{"tags": []string{"Edited"}}, owner), "id", q.ID.Hex())
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"tags":["edited"]`)
	rec.AssertContains(t, `"title":"Original question title"`)

	rec = testutil.NewRecorder()
	req = testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]any{"title": "too short"}, owner), "id", q.ID.Hex())
	h.HandleUpdate(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", nil, other), "id", q.ID.Hex()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", nil, admin), "id", q.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.HandleDelete(rec, testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", nil, admin), "id", q.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	q := fx.CreateQuestion(ctx, fx.CreateUser(ctx, "author"), "Is a nil map safe to read?")
	voter := fx.CreateUser(ctx, "voter")

	steps := []struct {
		vote       string
		wantStatus int
		wantScore  int
	}{
		{"up", http.StatusOK, 1},
		{"up", http.StatusOK, 1},
		{"down", http.StatusOK, -1},
		{"none", http.StatusOK, 0},
		{"sideways", http.StatusBadRequest, 0},
	}
	for _, st := range steps {
		rec := testutil.NewRecorder()
		req := testutil.NewAuthenticatedRequest(http.MethodPut, "/", map[string]string{"voteType": st.vote}, voter)
		h.HandleVote(rec, testutil.WithChiURLParam(req, "id", q.ID.Hex()))
		rec.AssertStatus(t, st.wantStatus)
		if st.wantStatus != http.StatusOK {
			continue
		}
		var body views.VoteResponse
		rec.Decode(t, &body)
		if body.VoteScore != st.wantScore || body.Message != "Vote recorded successfully" {
			t.Errorf("vote %s: got %+v, want score %d", st.vote, body, st.wantScore)
		}
	}
}
