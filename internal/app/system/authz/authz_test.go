package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	role, name, id, ok := authz.UserCtx(req)
	if ok || role != "visitor" || name != "" || !id.IsZero() {
		t.Errorf("unexpected visitor context: %q %q %s %v", role, name, id.Hex(), ok)
	}
}

func TestUserCtx_ZeroIDFailsClosed(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.Identity{Role: "admin"})
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for identity without an ID")
	}
	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin=false for identity without an ID")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	id := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.Identity{
		UserID:   id,
		Username: "alice",
		Role:     "ADMIN",
	})
	role, name, got, ok := authz.UserCtx(req)
	if !ok || role != "admin" || name != "alice" || got != id {
		t.Errorf("unexpected context: %q %q %s %v", role, name, got.Hex(), ok)
	}
}

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		role      string
		wantAdmin bool
	}{
		{role: "admin", wantAdmin: true},
		{role: "Admin", wantAdmin: true},
		{role: "member"},
		{role: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.Identity{
				UserID: primitive.NewObjectID(),
				Role:   tt.role,
			})
			if got := authz.IsAdmin(req); got != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.wantAdmin)
			}
		})
	}
}

func TestIsSelf(t *testing.T) {
	id := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.Identity{UserID: id, Role: "member"})
	if !authz.IsSelf(req, id) {
		t.Error("expected IsSelf for own id")
	}
	if authz.IsSelf(req, primitive.NewObjectID()) {
		t.Error("expected IsSelf=false for other id")
	}
}
