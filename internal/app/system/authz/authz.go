// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's role (lowercased), username, ObjectID and a
// found flag. Without an identity it returns "visitor", "", NilObjectID, false.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.UserID.IsZero() {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Username, user.UserID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsSelf reports whether the current request's user is userID.
func IsSelf(r *http.Request, userID primitive.ObjectID) bool {
	_, _, id, ok := UserCtx(r)
	return ok && id == userID
}
