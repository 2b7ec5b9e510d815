// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold. Promotion is one-way (member -> admin).
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is a registered forum account.
//
// NOTE:
//   - PasswordHash is never serialized to JSON.
//   - Reputation is carried for display only; nothing in the service mutates it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // member | admin
	Reputation   int                `bson:"reputation" json:"reputation"`
	Bio          string             `bson:"bio,omitempty" json:"bio"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar"`

	QuestionsAsked []primitive.ObjectID `bson:"questions_asked,omitempty" json:"questionsAsked"`
	AnswersGiven   []primitive.ObjectID `bson:"answers_given,omitempty" json:"answersGiven"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthorSummary is the slice of a User embedded in question/answer payloads.
type AuthorSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Avatar     string             `bson:"avatar,omitempty" json:"avatar"`
	Reputation int                `bson:"reputation" json:"reputation"`
}

// Summary returns the public author view of the user.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar, Reputation: u.Reputation}
}
