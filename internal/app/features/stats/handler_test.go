package stats_test

import (
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	"github.com/dalemusser/stackit/internal/app/features/stats"
	metricsstore "github.com/dalemusser/stackit/internal/app/store/metrics"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.uber.org/zap"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := stats.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	rec := testutil.NewRecorder()
	h.Serve(rec, testutil.NewRequest(http.MethodGet, "/api/stats"))
	rec.AssertStatus(t, http.StatusOK)
	var empty metricsstore.Counts
	rec.Decode(t, &empty)
	if empty != (metricsstore.Counts{}) {
		t.Errorf("empty db counts = %+v", empty)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	a := fx.CreateUser(ctx, "alpha")
	b := fx.CreateUser(ctx, "bravo")
	q1 := fx.CreateQuestion(ctx, a, "First question about channels", "go", "channels")
	fx.CreateQuestion(ctx, b, "Second question about maps", "go", "maps")
	fx.CreateAnswer(ctx, q1, b)

	rec = testutil.NewRecorder()
	h.Serve(rec, testutil.NewRequest(http.MethodGet, "/api/stats"))
	rec.AssertStatus(t, http.StatusOK)
	var got metricsstore.Counts
	rec.Decode(t, &got)
	want := metricsstore.Counts{Questions: 2, Answers: 1, Users: 2, Topics: 3}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}
