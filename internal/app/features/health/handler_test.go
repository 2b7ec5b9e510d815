package health_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/stackit/internal/app/features/health"
	"github.com/dalemusser/stackit/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type downPinger struct{}

func (downPinger) Ping(context.Context, *readpref.ReadPref) error {
	return errors.New("server selection timeout")
}

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	rec := testutil.NewRecorder()
	health.Routes(h).ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body healthBody
	rec.Decode(t, &body)
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("body = %+v", body)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	h := &health.Handler{Client: downPinger{}, Log: zap.NewNop()}

	rec := testutil.NewRecorder()
	h.Serve(rec, testutil.NewRequest(http.MethodGet, "/health"))
	rec.AssertStatus(t, http.StatusServiceUnavailable)

	var body healthBody
	rec.Decode(t, &body)
	if body.Status != "error" || body.Database != "disconnected" || body.Message != "Database unavailable" {
		t.Errorf("body = %+v", body)
	}
}
