// Package contentpolicy provides authorization rules for questions and answers.
//
// Authorization rules:
//   - Authors and admins may edit or soft-delete a question or answer
//   - Only the question's author may accept an answer; admins get no override
//   - Route middleware (RequireSignedIn / RequireRole) handles authentication
package contentpolicy

import (
	"github.com/dalemusser/stackit/internal/app/system/apperr"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanModify reports whether actor may edit or delete content written by authorID.
func CanModify(actor *auth.Identity, authorID primitive.ObjectID) bool {
	if actor == nil || actor.UserID.IsZero() {
		return false
	}
	return actor.UserID == authorID || actor.IsAdmin()
}

// CanAccept reports whether actor may accept answers on a question written by
// questionAuthorID.
func CanAccept(actor *auth.Identity, questionAuthorID primitive.ObjectID) bool {
	if actor == nil || actor.UserID.IsZero() {
		return false
	}
	return actor.UserID == questionAuthorID
}

// RequireModify returns an ErrForbidden-wrapped error when actor may not
// modify content by authorID. what is the noun used in the message.
func RequireModify(actor *auth.Identity, authorID primitive.ObjectID, what string) error {
	if CanModify(actor, authorID) {
		return nil
	}
	return apperr.Forbidden("Not authorized to modify this " + what)
}
