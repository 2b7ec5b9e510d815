package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	answerstore "github.com/dalemusser/stackit/internal/app/store/answers"
	questionstore "github.com/dalemusser/stackit/internal/app/store/questions"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// FixturePassword is the password every fixture user is created with.
const FixturePassword = "secret123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data through the
// real stores, so fixtures look exactly like production documents.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser registers a member. The email is derived from username.
func (f *Fixtures) CreateUser(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleMember)
}

// CreateAdmin registers an admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, username string) models.User {
	f.t.Helper()
	return f.createUser(ctx, username, models.RoleAdmin)
}

func (f *Fixtures) createUser(ctx context.Context, username, role string) models.User {
	f.t.Helper()
	u, err := userstore.New(f.db).Create(ctx, userstore.NewUser{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: FixturePassword,
		Role:     role,
	})
	if err != nil {
		f.t.Fatalf("CreateUser(%q) failed: %v", username, err)
	}
	return u
}

// CreateQuestion posts an active question by author with a valid body.
func (f *Fixtures) CreateQuestion(ctx context.Context, author models.User, title string, tags ...string) models.Question {
	f.t.Helper()
	if len(tags) == 0 {
		tags = []string{"go"}
	}
	q, err := questionstore.New(f.db).Create(ctx, questionstore.NewQuestion{
		Title:       title,
		Description: "<p>This is a sufficiently long question body.</p>",
		Tags:        tags,
		AuthorID:    author.ID,
	})
	if err != nil {
		f.t.Fatalf("CreateQuestion(%q) failed: %v", title, err)
	}
	if err := userstore.New(f.db).AddQuestion(ctx, author.ID, q.ID); err != nil {
		f.t.Fatalf("AddQuestion failed: %v", err)
	}
	return q
}

// CreateAnswer posts an active answer by author on q and links it to q.
func (f *Fixtures) CreateAnswer(ctx context.Context, q models.Question, author models.User) models.Answer {
	f.t.Helper()
	a, err := answerstore.New(f.db).Create(ctx, q.ID, author.ID, "<p>This answer is long enough to be accepted.</p>")
	if err != nil {
		f.t.Fatalf("CreateAnswer failed: %v", err)
	}
	if err := questionstore.New(f.db).AddAnswer(ctx, q.ID, a.ID); err != nil {
		f.t.Fatalf("AddAnswer failed: %v", err)
	}
	if err := userstore.New(f.db).AddAnswer(ctx, author.ID, a.ID); err != nil {
		f.t.Fatalf("user AddAnswer failed: %v", err)
	}
	return a
}
