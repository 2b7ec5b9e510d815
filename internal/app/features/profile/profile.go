// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/stackit/internal/app/features/errors"
	userstore "github.com/dalemusser/stackit/internal/app/store/users"
	"github.com/dalemusser/stackit/internal/app/system/auth"
	"github.com/dalemusser/stackit/internal/app/system/authz"
	"github.com/dalemusser/stackit/internal/app/system/formutil"
	"github.com/dalemusser/stackit/internal/app/system/inputval"
	"github.com/dalemusser/stackit/internal/app/system/timeouts"
	"github.com/dalemusser/stackit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// questionItem and answerItem are the activity rows of a profile.
type questionItem struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	VoteScore int                `json:"voteScore"`
	CreatedAt time.Time          `json:"createdAt"`
}

type answerItem struct {
	ID         primitive.ObjectID `json:"_id"`
	QuestionID primitive.ObjectID `json:"question"`
	Content    string             `json:"content"`
	VoteScore  int                `json:"voteScore"`
	IsAccepted bool               `json:"isAccepted"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// profileData is the user block of every profile response. Email is only
// filled for the owner.
type profileData struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email,omitempty"`
	Role           string             `json:"role"`
	Bio            string             `json:"bio"`
	Avatar         string             `json:"avatar"`
	Reputation     int                `json:"reputation"`
	QuestionsAsked []questionItem     `json:"questionsAsked"`
	AnswersGiven   []answerItem       `json:"answersGiven"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type profileResponse struct {
	Message string      `json:"message,omitempty"`
	User    profileData `json:"user"`
}

func (h *Handler) buildProfile(ctx context.Context, u models.User, owner bool) (profileData, error) {
	data := profileData{
		ID:             u.ID,
		Username:       u.Username,
		Role:           u.Role,
		Bio:            u.Bio,
		Avatar:         u.Avatar,
		Reputation:     u.Reputation,
		QuestionsAsked: []questionItem{},
		AnswersGiven:   []answerItem{},
		CreatedAt:      u.CreatedAt,
	}
	if owner {
		data.Email = u.Email
	}

	qs, err := h.Questions.ListByAuthor(ctx, u.ID, activityLimit)
	if err != nil {
		return profileData{}, err
	}
	for _, q := range qs {
		data.QuestionsAsked = append(data.QuestionsAsked, questionItem{
			ID: q.ID, Title: q.Title, VoteScore: q.VoteScore(), CreatedAt: q.CreatedAt,
		})
	}

	as, err := h.Answers.ListByAuthor(ctx, u.ID, activityLimit)
	if err != nil {
		return profileData{}, err
	}
	for _, a := range as {
		data.AnswersGiven = append(data.AnswersGiven, answerItem{
			ID: a.ID, QuestionID: a.QuestionID, Content: a.Content,
			VoteScore: a.VoteScore(), IsAccepted: a.IsAccepted, CreatedAt: a.CreatedAt,
		})
	}
	return data, nil
}

// ServeProfile handles GET /api/users/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, me.UserID)
	if err != nil {
		h.ErrLog.Write(w, r, "profile: load user", err)
		return
	}
	data, err := h.buildProfile(ctx, u, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: load activity", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, profileResponse{User: data})
}

// ServePublic handles GET /api/users/{id}.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "id", "User")
	if err != nil {
		h.ErrLog.Write(w, r, "public profile", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Write(w, r, "public profile: load user", err)
		return
	}
	// The owner and admins also see the email address.
	data, err := h.buildProfile(ctx, u, authz.IsSelf(r, id) || authz.IsAdmin(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "public profile: load activity", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, profileResponse{User: data})
}

type profileInput struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
}

// HandleUpdateProfile handles PUT /api/users/profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	var in profileInput
	if err := formutil.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "update profile: decode", err)
		return
	}
	if err := inputval.CheckProfile(in.Username, in.Bio); err != nil {
		h.ErrLog.Write(w, r, "update profile: validate", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, me.UserID, userstore.ProfileUpdate{Username: in.Username, Bio: in.Bio})
	if err != nil {
		h.ErrLog.Write(w, r, "update profile", err)
		return
	}
	data, err := h.buildProfile(ctx, u, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update profile: load activity", err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, profileResponse{Message: "Profile updated successfully", User: data})
}
